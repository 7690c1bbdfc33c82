package books

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

const (
	msgAlreadyAssociated = "Author already associated with this book"
	msgNotAssociated     = "Author not associated with this book"
)

// AddAuthor は本と著者を関連付ける。既に関連付いていれば Conflict。
// 事前チェックに加えて UNIQUE(book_id, author_id) でも弾く。
func (s *Service) AddAuthor(ctx context.Context, bookID, authorID int64) error {
	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.checkEndpoints(ctx, tx, bookID, authorID); err != nil {
			return err
		}
		linked, err := s.store.linked(ctx, tx, bookID, authorID)
		if err != nil {
			return err
		}
		if linked {
			return apierr.ErrConflict(msgAlreadyAssociated)
		}
		ins := s.store.sb.Insert("book_authors").Columns("book_id", "author_id").Values(bookID, authorID)
		if _, err := db.Exec(ctx, tx, ins); err != nil {
			if db.IsDuplicateKey(err) {
				return apierr.ErrConflict(msgAlreadyAssociated)
			}
			return err
		}
		return nil
	})
}

// RemoveAuthor は関連付けを外す。関連付いていなければ NotFound。
func (s *Service) RemoveAuthor(ctx context.Context, bookID, authorID int64) error {
	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.checkEndpoints(ctx, tx, bookID, authorID); err != nil {
			return err
		}
		linked, err := s.store.linked(ctx, tx, bookID, authorID)
		if err != nil {
			return err
		}
		if !linked {
			return apierr.ErrNotFound(msgNotAssociated)
		}
		del := s.store.sb.Delete("book_authors").Where(sq.Eq{"book_id": bookID, "author_id": authorID})
		_, err = db.Exec(ctx, tx, del)
		return err
	})
}

func (s *Service) checkEndpoints(ctx context.Context, tx db.DBTX, bookID, authorID int64) error {
	if err := s.store.exists(ctx, tx, bookID); err != nil {
		return err
	}
	var got int64
	sel := s.store.sb.Select("id").From("authors").Where(sq.Eq{"id": authorID})
	if err := db.QueryRow(ctx, tx, sel).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.ErrNotFound("Author not found")
		}
		return err
	}
	return nil
}

func (s *Store) linked(ctx context.Context, q db.DBTX, bookID, authorID int64) (bool, error) {
	sel := s.sb.Select("COUNT(*)").From("book_authors").
		Where(sq.Eq{"book_id": bookID, "author_id": authorID})
	var n int
	if err := db.QueryRow(ctx, q, sel).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
