package members

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

const msgDuplicateEmail = "Member with this email already exists"

type Store struct {
	conn *db.Conn
	sb   sq.StatementBuilderType
}

func NewStore(conn *db.Conn) *Store {
	return &Store{conn: conn, sb: conn.Dialect.Builder()}
}

func (s *Store) Insert(ctx context.Context, m *Member) error {
	b := s.sb.Insert("members").Columns("name", "email").Values(m.Name, m.Email)
	id, err := s.conn.InsertID(ctx, s.conn, b)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return apierr.ErrConflict(msgDuplicateEmail)
		}
		return err
	}
	m.ID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, q db.DBTX, id int64) (*Member, error) {
	b := s.sb.Select("id", "name", "email").From("members").Where(sq.Eq{"id": id})
	var m Member
	if err := db.QueryRow(ctx, q, b).Scan(&m.ID, &m.Name, &m.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("Member not found")
		}
		return nil, err
	}
	return &m, nil
}

// List: id 昇順。active_loans は未返却の貸出数
func (s *Store) List(ctx context.Context) ([]memberRow, error) {
	b := s.sb.Select(
		"m.id", "m.name", "m.email",
		"(SELECT COUNT(*) FROM loans l WHERE l.member_id = m.id AND l.return_date IS NULL) AS active_loans",
	).From("members m").OrderBy("m.id ASC")

	rows, err := db.Query(ctx, s.conn, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []memberRow{}
	for rows.Next() {
		var r memberRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.ActiveLoans); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListLoans(ctx context.Context, memberID int64) ([]memberLoanRow, error) {
	b := s.sb.Select("l.id", "l.book_id", "b.title", "l.loan_date", "l.due_date", "l.return_date").
		From("loans l").
		Join("books b ON b.id = l.book_id").
		Where(sq.Eq{"l.member_id": memberID}).
		OrderBy("l.id ASC")

	rows, err := db.Query(ctx, s.conn, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []memberLoanRow{}
	for rows.Next() {
		var r memberLoanRow
		if err := rows.Scan(&r.ID, &r.BookID, &r.BookTitle, &r.LoanDate, &r.DueDate, &r.ReturnDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Update は存在確認してから変更のある列だけ UPDATE する。
func (s *Store) Update(ctx context.Context, id int64, set map[string]any) error {
	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.GetByID(ctx, tx, id); err != nil {
			return err
		}
		if len(set) == 0 {
			return nil
		}
		_, err := db.Exec(ctx, tx, s.sb.Update("members").SetMap(set).Where(sq.Eq{"id": id}))
		if db.IsDuplicateKey(err) {
			return apierr.ErrConflict(msgDuplicateEmail)
		}
		return err
	})
}

// Delete は会員の貸出履歴を消してから会員を消す。
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.GetByID(ctx, tx, id); err != nil {
			return err
		}
		if _, err := db.Exec(ctx, tx, s.sb.Delete("loans").Where(sq.Eq{"member_id": id})); err != nil {
			return err
		}
		_, err := db.Exec(ctx, tx, s.sb.Delete("members").Where(sq.Eq{"id": id}))
		return err
	})
}
