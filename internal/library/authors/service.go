package authors

import (
	"context"
	"strings"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/civil"
	"library-backend/internal/platform/db"
)

type Service struct {
	conn  *db.Conn
	store *Store
}

func NewService(conn *db.Conn) *Service {
	return &Service{conn: conn, store: NewStore(conn)}
}

func (s *Service) CreateAuthor(ctx context.Context, in CreateAuthorRequest) (CreatedAuthorResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return CreatedAuthorResponse{}, apierr.ErrInvalid("name is required")
	}
	birth, err := civil.ParsePtr(in.BirthDate)
	if err != nil {
		return CreatedAuthorResponse{}, apierr.ErrInvalid(err.Error())
	}

	a := &Author{Name: name, BirthDate: birth}
	if err := s.store.Insert(ctx, a); err != nil {
		return CreatedAuthorResponse{}, err
	}
	return CreatedAuthorResponse{ID: a.ID, Name: a.Name}, nil
}

func (s *Service) ListAuthors(ctx context.Context) ([]AuthorListItem, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AuthorListItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, AuthorListItem{
			ID:        r.ID,
			Name:      r.Name,
			BirthDate: r.BirthDate.Ptr(),
			BookCount: r.BookCount,
		})
	}
	return out, nil
}

func (s *Service) GetAuthor(ctx context.Context, id int64) (AuthorDetailResponse, error) {
	a, err := s.store.GetByID(ctx, s.conn, id)
	if err != nil {
		return AuthorDetailResponse{}, err
	}
	books, err := s.store.ListBooks(ctx, id)
	if err != nil {
		return AuthorDetailResponse{}, err
	}

	resp := AuthorDetailResponse{
		ID:        a.ID,
		Name:      a.Name,
		BirthDate: a.BirthDate.Ptr(),
		Books:     make([]AuthorBook, 0, len(books)),
	}
	for _, b := range books {
		ab := AuthorBook{ID: b.BookID, Title: b.Title}
		if b.PublicationDate.Valid {
			y := b.PublicationDate.Date.Year()
			ab.PublicationYear = &y
		}
		resp.Books = append(resp.Books, ab)
	}
	return resp, nil
}

func (s *Service) UpdateAuthor(ctx context.Context, id int64, in UpdateAuthorRequest) error {
	set := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apierr.ErrInvalid("name must not be empty")
		}
		set["name"] = name
	}
	if in.BirthDate != nil {
		d, err := civil.Parse(*in.BirthDate)
		if err != nil {
			return apierr.ErrInvalid(err.Error())
		}
		set["birth_date"] = d
	}
	return s.store.Update(ctx, id, set)
}

func (s *Service) DeleteAuthor(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
