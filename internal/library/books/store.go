package books

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Store struct {
	conn *db.Conn
	sb   sq.StatementBuilderType
}

func NewStore(conn *db.Conn) *Store {
	return &Store{conn: conn, sb: conn.Dialect.Builder()}
}

// 貸出中でなければ available
const availableExpr = "CASE WHEN EXISTS (SELECT 1 FROM loans l WHERE l.book_id = b.id AND l.return_date IS NULL) THEN 0 ELSE 1 END AS available"

func (s *Store) Insert(ctx context.Context, q db.DBTX, b *Book) error {
	ins := s.sb.Insert("books").
		Columns("title", "isbn", "publication_date").
		Values(b.Title, b.ISBN, b.PublicationDate)
	id, err := s.conn.InsertID(ctx, q, ins)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*bookRow, error) {
	sel := s.sb.Select("b.id", "b.title", "b.isbn", "b.publication_date", availableExpr).
		From("books b").
		Where(sq.Eq{"b.id": id})

	var r bookRow
	if err := db.QueryRow(ctx, q, sel).Scan(&r.ID, &r.Title, &r.ISBN, &r.PublicationDate, &r.Available); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("Book not found")
		}
		return nil, err
	}
	return &r, nil
}

// exists は行ロック付きで本の存在を確認する（関連付け・削除の前段）。
func (s *Store) exists(ctx context.Context, q db.DBTX, id int64) error {
	sel := s.conn.Dialect.LockRows(s.sb.Select("id").From("books").Where(sq.Eq{"id": id}))
	var got int64
	if err := db.QueryRow(ctx, q, sel).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.ErrNotFound("Book not found")
		}
		return err
	}
	return nil
}

// List: id 昇順
func (s *Store) List(ctx context.Context) ([]bookRow, error) {
	sel := s.sb.Select("b.id", "b.title", "b.isbn", "b.publication_date", availableExpr).
		From("books b").
		OrderBy("b.id ASC")

	rows, err := db.Query(ctx, s.conn, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []bookRow{}
	for rows.Next() {
		var r bookRow
		if err := rows.Scan(&r.ID, &r.Title, &r.ISBN, &r.PublicationDate, &r.Available); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AuthorsOf は bookIDs の著者を本ごとにまとめて返す。
func (s *Store) AuthorsOf(ctx context.Context, q db.DBTX, bookIDs []int64) (map[int64][]authorRef, error) {
	if len(bookIDs) == 0 {
		return map[int64][]authorRef{}, nil
	}
	sel := s.sb.Select("ba.book_id", "a.id", "a.name").
		From("book_authors ba").
		Join("authors a ON a.id = ba.author_id").
		Where(sq.Eq{"ba.book_id": bookIDs}).
		OrderBy("ba.book_id ASC", "a.id ASC")

	rows, err := db.Query(ctx, q, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := []authorRef{}
	for rows.Next() {
		var r authorRef
		if err := rows.Scan(&r.BookID, &r.AuthorID, &r.Name); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lo.GroupBy(refs, func(r authorRef) int64 { return r.BookID }), nil
}

func (s *Store) LoansOf(ctx context.Context, bookID int64) ([]bookLoanRow, error) {
	sel := s.sb.Select("l.id", "m.name", "l.loan_date", "l.due_date", "l.return_date").
		From("loans l").
		Join("members m ON m.id = l.member_id").
		Where(sq.Eq{"l.book_id": bookID}).
		OrderBy("l.id ASC")

	rows, err := db.Query(ctx, s.conn, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []bookLoanRow{}
	for rows.Next() {
		var r bookLoanRow
		if err := rows.Scan(&r.ID, &r.MemberName, &r.LoanDate, &r.DueDate, &r.ReturnDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, q db.DBTX, id int64, set map[string]any) error {
	if len(set) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, q, s.sb.Update("books").SetMap(set).Where(sq.Eq{"id": id}))
	return err
}

// existingAuthorIDs は ids のうち authors に存在するものだけを返す。
func (s *Store) existingAuthorIDs(ctx context.Context, q db.DBTX, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sel := s.sb.Select("id").From("authors").Where(sq.Eq{"id": ids}).OrderBy("id ASC")
	rows, err := db.Query(ctx, q, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ReplaceAuthors は本の関連付けをまるごと置き換える。存在しない著者 id は無視する。
func (s *Store) ReplaceAuthors(ctx context.Context, q db.DBTX, bookID int64, authorIDs []int64) error {
	if _, err := db.Exec(ctx, q, s.sb.Delete("book_authors").Where(sq.Eq{"book_id": bookID})); err != nil {
		return err
	}
	ids, err := s.existingAuthorIDs(ctx, q, lo.Uniq(authorIDs))
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	ins := s.sb.Insert("book_authors").Columns("book_id", "author_id")
	for _, aid := range ids {
		ins = ins.Values(bookID, aid)
	}
	_, err = db.Exec(ctx, q, ins)
	return err
}

// Delete は貸出履歴・関連付けを消してから本を消す。
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.exists(ctx, tx, id); err != nil {
			return err
		}
		if _, err := db.Exec(ctx, tx, s.sb.Delete("loans").Where(sq.Eq{"book_id": id})); err != nil {
			return err
		}
		if _, err := db.Exec(ctx, tx, s.sb.Delete("book_authors").Where(sq.Eq{"book_id": id})); err != nil {
			return err
		}
		_, err := db.Exec(ctx, tx, s.sb.Delete("books").Where(sq.Eq{"id": id}))
		return err
	})
}
