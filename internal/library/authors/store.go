package authors

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

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

func (s *Store) Insert(ctx context.Context, a *Author) error {
	b := s.sb.Insert("authors").
		Columns("name", "birth_date").
		Values(a.Name, a.BirthDate)
	id, err := s.conn.InsertID(ctx, s.conn, b)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Author, error) {
	b := s.sb.Select("id", "name", "birth_date").From("authors").Where(sq.Eq{"id": id})
	var a Author
	if err := db.QueryRow(ctx, q, b).Scan(&a.ID, &a.Name, &a.BirthDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("Author not found")
		}
		return nil, err
	}
	return &a, nil
}

// List: id 昇順（安定順序）
func (s *Store) List(ctx context.Context) ([]authorRow, error) {
	b := s.sb.Select(
		"a.id", "a.name", "a.birth_date",
		"(SELECT COUNT(*) FROM book_authors ba WHERE ba.author_id = a.id) AS book_count",
	).From("authors a").OrderBy("a.id ASC")

	rows, err := db.Query(ctx, s.conn, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []authorRow{}
	for rows.Next() {
		var r authorRow
		if err := rows.Scan(&r.ID, &r.Name, &r.BirthDate, &r.BookCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListBooks(ctx context.Context, authorID int64) ([]authorBookRow, error) {
	b := s.sb.Select("b.id", "b.title", "b.publication_date").
		From("books b").
		Join("book_authors ba ON ba.book_id = b.id").
		Where(sq.Eq{"ba.author_id": authorID}).
		OrderBy("b.id ASC")

	rows, err := db.Query(ctx, s.conn, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []authorBookRow{}
	for rows.Next() {
		var r authorBookRow
		if err := rows.Scan(&r.BookID, &r.Title, &r.PublicationDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Update は存在確認してから変更のある列だけ UPDATE する。
// MySQL は値が変わらないと RowsAffected=0 になるので件数では判定しない。
func (s *Store) Update(ctx context.Context, id int64, set map[string]any) error {
	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.GetByID(ctx, tx, id); err != nil {
			return err
		}
		if len(set) == 0 {
			return nil
		}
		_, err := db.Exec(ctx, tx, s.sb.Update("authors").SetMap(set).Where(sq.Eq{"id": id}))
		return err
	})
}

// Delete は関連付け（book_authors）を消してから著者を消す。
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.GetByID(ctx, tx, id); err != nil {
			return err
		}
		if _, err := db.Exec(ctx, tx, s.sb.Delete("book_authors").Where(sq.Eq{"author_id": id})); err != nil {
			return err
		}
		_, err := db.Exec(ctx, tx, s.sb.Delete("authors").Where(sq.Eq{"id": id}))
		return err
	})
}
