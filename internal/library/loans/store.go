package loans

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	ulid "github.com/oklog/ulid/v2"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

const msgBookOrMemberNotFound = "Book or member not found"

var loanColumns = []string{
	"l.id", "l.reference", "l.book_id", "l.member_id", "l.loan_date", "l.due_date", "l.return_date",
}

type Store struct {
	conn *db.Conn
	sb   sq.StatementBuilderType
}

func NewStore(conn *db.Conn) *Store {
	return &Store{conn: conn, sb: conn.Dialect.Builder()}
}

// keyPred: パスの :id は数値 id か ULID（reference）のどちらでもよい
func keyPred(key string) (sq.Eq, error) {
	key = strings.TrimSpace(key)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		return sq.Eq{"l.id": id}, nil
	}
	if u, err := ulid.ParseStrict(key); err == nil {
		return sq.Eq{"l.reference": u.String()}, nil
	}
	return nil, apierr.ErrInvalid("loan id must be a positive number or a ULID")
}

func scanLoan(row db.RowScanner, l *Loan, extra ...any) error {
	dest := append([]any{&l.ID, &l.Reference, &l.BookID, &l.MemberID, &l.LoanDate, &l.DueDate, &l.ReturnDate}, extra...)
	return row.Scan(dest...)
}

// lockBook は本の行をロックしてタイトルを返す。
func (s *Store) lockBook(ctx context.Context, tx db.DBTX, bookID int64) (string, error) {
	sel := s.conn.Dialect.LockRows(s.sb.Select("title").From("books").Where(sq.Eq{"id": bookID}))
	var title string
	if err := db.QueryRow(ctx, tx, sel).Scan(&title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apierr.ErrNotFound(msgBookOrMemberNotFound)
		}
		return "", err
	}
	return title, nil
}

func (s *Store) memberName(ctx context.Context, tx db.DBTX, memberID int64) (string, error) {
	sel := s.sb.Select("name").From("members").Where(sq.Eq{"id": memberID})
	var name string
	if err := db.QueryRow(ctx, tx, sel).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apierr.ErrNotFound(msgBookOrMemberNotFound)
		}
		return "", err
	}
	return name, nil
}

func (s *Store) hasActiveLoan(ctx context.Context, tx db.DBTX, bookID int64) (bool, error) {
	sel := s.sb.Select("COUNT(*)").From("loans").
		Where(sq.Eq{"book_id": bookID, "return_date": nil})
	var n int
	if err := db.QueryRow(ctx, tx, sel).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Insert(ctx context.Context, tx db.DBTX, l *Loan) error {
	ins := s.sb.Insert("loans").
		Columns("reference", "book_id", "member_id", "loan_date", "due_date").
		Values(l.Reference, l.BookID, l.MemberID, l.LoanDate, l.DueDate)
	id, err := s.conn.InsertID(ctx, tx, ins)
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

// Get は key（id / ULID）で1件取る。lock なら行ロック付き（更新系の Tx 内で使う）。
func (s *Store) Get(ctx context.Context, q db.DBTX, key string, lock bool) (*Loan, error) {
	pred, err := keyPred(key)
	if err != nil {
		return nil, err
	}
	sel := s.sb.Select(loanColumns...).From("loans l").Where(pred)
	if lock {
		sel = s.conn.Dialect.LockRows(sel)
	}
	var l Loan
	if err := scanLoan(db.QueryRow(ctx, q, sel), &l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("Loan not found")
		}
		return nil, err
	}
	return &l, nil
}

func (s *Store) selectRows() sq.SelectBuilder {
	cols := append(append([]string{}, loanColumns...), "b.title", "m.name")
	return s.sb.Select(cols...).
		From("loans l").
		Join("books b ON b.id = l.book_id").
		Join("members m ON m.id = l.member_id")
}

func (s *Store) GetRow(ctx context.Context, q db.DBTX, key string) (*loanRow, error) {
	pred, err := keyPred(key)
	if err != nil {
		return nil, err
	}
	var r loanRow
	if err := scanLoan(db.QueryRow(ctx, q, s.selectRows().Where(pred)), &r.Loan, &r.BookTitle, &r.MemberName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("Loan not found")
		}
		return nil, err
	}
	return &r, nil
}

// List: id 昇順
func (s *Store) List(ctx context.Context, f LoanFilter) ([]loanRow, error) {
	sel := s.selectRows().OrderBy("l.id ASC")
	switch f.Status {
	case StatusActive:
		sel = sel.Where(sq.Eq{"l.return_date": nil})
	case StatusReturned:
		sel = sel.Where(sq.NotEq{"l.return_date": nil})
	}
	if f.BookID != nil {
		sel = sel.Where(sq.Eq{"l.book_id": *f.BookID})
	}
	if f.MemberID != nil {
		sel = sel.Where(sq.Eq{"l.member_id": *f.MemberID})
	}

	rows, err := db.Query(ctx, s.conn, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []loanRow{}
	for rows.Next() {
		var r loanRow
		if err := scanLoan(rows, &r.Loan, &r.BookTitle, &r.MemberName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) AuthorNames(ctx context.Context, q db.DBTX, bookID int64) ([]string, error) {
	sel := s.sb.Select("a.name").
		From("book_authors ba").
		Join("authors a ON a.id = ba.author_id").
		Where(sq.Eq{"ba.book_id": bookID}).
		OrderBy("a.id ASC")

	rows, err := db.Query(ctx, q, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) bookTitle(ctx context.Context, q db.DBTX, bookID int64) (string, error) {
	var title string
	err := db.QueryRow(ctx, q, s.sb.Select("title").From("books").Where(sq.Eq{"id": bookID})).Scan(&title)
	return title, err
}

func (s *Store) Update(ctx context.Context, tx db.DBTX, id int64, set map[string]any) error {
	if len(set) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, tx, s.sb.Update("loans").SetMap(set).Where(sq.Eq{"id": id}))
	return err
}

func (s *Store) Delete(ctx context.Context, tx db.DBTX, id int64) error {
	_, err := db.Exec(ctx, tx, s.sb.Delete("loans").Where(sq.Eq{"id": id}))
	return err
}
