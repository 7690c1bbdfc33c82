package books

import (
	"context"
	"database/sql"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/width"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/civil"
	"library-backend/internal/platform/db"
)

const msgDuplicateISBN = "Book with this ISBN already exists"

type Service struct {
	conn  *db.Conn
	store *Store
}

func NewService(conn *db.Conn) *Service {
	return &Service{conn: conn, store: NewStore(conn)}
}

// NormalizeISBN は前後の空白を落とし、全角の数字・ハイフンを半角にする。
// 空なら NULL。
func NormalizeISBN(s string) sql.NullString {
	s = width.Narrow.String(strings.TrimSpace(s))
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (s *Service) CreateBook(ctx context.Context, in CreateBookRequest) (CreatedBookResponse, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return CreatedBookResponse{}, apierr.ErrInvalid("title is required")
	}
	pub, err := civil.ParsePtr(in.PublicationDate)
	if err != nil {
		return CreatedBookResponse{}, apierr.ErrInvalid(err.Error())
	}

	b := &Book{Title: title, PublicationDate: pub}
	if in.ISBN != nil {
		b.ISBN = NormalizeISBN(*in.ISBN)
	}

	err = s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.store.Insert(ctx, tx, b); err != nil {
			if db.IsDuplicateKey(err) {
				return apierr.ErrConflict(msgDuplicateISBN)
			}
			return err
		}
		if len(in.AuthorIDs) == 0 {
			return nil
		}
		return s.store.ReplaceAuthors(ctx, tx, b.ID, in.AuthorIDs)
	})
	if err != nil {
		return CreatedBookResponse{}, err
	}
	return CreatedBookResponse{ID: b.ID, Title: b.Title}, nil
}

func (s *Service) ListBooks(ctx context.Context) ([]BookListItem, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := lo.Map(rows, func(r bookRow, _ int) int64 { return r.ID })
	authors, err := s.store.AuthorsOf(ctx, s.conn, ids)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(r bookRow, _ int) BookListItem {
		return toListItem(r, authors[r.ID])
	}), nil
}

func (s *Service) GetBook(ctx context.Context, id int64) (BookDetailResponse, error) {
	r, err := s.store.GetByID(ctx, s.conn, id)
	if err != nil {
		return BookDetailResponse{}, err
	}
	authors, err := s.store.AuthorsOf(ctx, s.conn, []int64{id})
	if err != nil {
		return BookDetailResponse{}, err
	}
	loans, err := s.store.LoansOf(ctx, id)
	if err != nil {
		return BookDetailResponse{}, err
	}

	return BookDetailResponse{
		BookListItem: toListItem(*r, authors[id]),
		Loans: lo.Map(loans, func(l bookLoanRow, _ int) BookLoan {
			return BookLoan{
				ID:       l.ID,
				Member:   l.MemberName,
				LoanDate: l.LoanDate,
				DueDate:  l.DueDate,
				Returned: l.ReturnDate.Valid,
			}
		}),
	}, nil
}

// UpdateBook は指定されたフィールドだけ反映する。検証は書き込み前にすべて済ませる。
func (s *Service) UpdateBook(ctx context.Context, id int64, in UpdateBookRequest) error {
	set := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apierr.ErrInvalid("title must not be empty")
		}
		set["title"] = title
	}
	if in.ISBN != nil {
		set["isbn"] = NormalizeISBN(*in.ISBN)
	}
	if in.PublicationDate != nil {
		d, err := civil.Parse(*in.PublicationDate)
		if err != nil {
			return apierr.ErrInvalid(err.Error())
		}
		set["publication_date"] = d
	}

	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.store.exists(ctx, tx, id); err != nil {
			return err
		}
		if err := s.store.Update(ctx, tx, id, set); err != nil {
			if db.IsDuplicateKey(err) {
				return apierr.ErrConflict(msgDuplicateISBN)
			}
			return err
		}
		if in.AuthorIDs == nil {
			return nil
		}
		return s.store.ReplaceAuthors(ctx, tx, id, *in.AuthorIDs)
	})
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// ---------- helpers ----------

func toListItem(r bookRow, refs []authorRef) BookListItem {
	item := BookListItem{
		ID:              r.ID,
		Title:           r.Title,
		PublicationDate: r.PublicationDate.Ptr(),
		Available:       r.Available,
		Authors: lo.Map(refs, func(a authorRef, _ int) BookAuthor {
			return BookAuthor{ID: a.AuthorID, Name: a.Name}
		}),
	}
	if r.ISBN.Valid {
		isbn := r.ISBN.String
		item.ISBN = &isbn
	}
	return item
}
