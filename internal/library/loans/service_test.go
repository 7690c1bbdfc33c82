package loans

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
	"library-backend/internal/testutil"
)

func strp(s string) *string { return &s }

type fixture struct {
	svc    *Service
	conn   *db.Conn
	clock  *testutil.FixedClock
	book   int64
	member int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testutil.NewSQLite(t)
	clock := testutil.NewFixedClock(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC))
	f := &fixture{
		svc:   NewService(conn, WithClock(clock)),
		conn:  conn,
		clock: clock,
	}
	f.book = f.exec(t, `INSERT INTO books (title) VALUES ('1984')`)
	f.member = f.exec(t, `INSERT INTO members (name, email) VALUES ('Bob', 'bob@example.com')`)
	return f
}

func (f *fixture) exec(t *testing.T, query string, args ...any) int64 {
	t.Helper()
	res, err := f.conn.ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func (f *fixture) lend(t *testing.T, days *int) CreatedLoanResponse {
	t.Helper()
	res, err := f.svc.CreateLoan(context.Background(), CreateLoanRequest{BookID: f.book, MemberID: f.member, LoanDays: days})
	require.NoError(t, err)
	return res
}

func key(id int64) string { return fmt.Sprint(id) }

func TestCreateLoanDefaultPeriod(t *testing.T) {
	f := newFixture(t)

	res := f.lend(t, nil)
	assert.Equal(t, "1984", res.Book)
	assert.Equal(t, "Bob", res.Member)
	assert.Equal(t, "2024-01-01", res.LoanDate.String())
	assert.Equal(t, "2024-01-15", res.DueDate.String())
	assert.Len(t, res.Reference, 26)
}

func TestCreateLoanMaxPeriod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateLoan(context.Background(), CreateLoanRequest{BookID: f.book, MemberID: f.member, LoanDays: intp(31)})
	require.Error(t, err)
	assert.True(t, apierr.IsCode(err, apierr.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "Maximum loan period is 30 days")

	res := f.lend(t, intp(30))
	assert.Equal(t, "2024-01-31", res.DueDate.String())
}

func TestCreateLoanNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateLoan(ctx, CreateLoanRequest{BookID: 999, MemberID: f.member})
	assert.True(t, apierr.IsCode(err, apierr.CodeNotFound))
	assert.Contains(t, err.Error(), "Book or member not found")

	_, err = f.svc.CreateLoan(ctx, CreateLoanRequest{BookID: f.book, MemberID: 999})
	assert.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestCreateLoanWhileActiveConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.lend(t, nil)

	_, err := f.svc.CreateLoan(ctx, CreateLoanRequest{BookID: f.book, MemberID: f.member})
	require.Error(t, err)
	assert.True(t, apierr.IsCode(err, apierr.CodeConflict))
	assert.Contains(t, err.Error(), "Book is already on loan")

	// 返却後は再び貸し出せる
	_, err = f.svc.ReturnLoan(ctx, key(first.ID))
	require.NoError(t, err)
	f.lend(t, nil)
}

func TestActiveLoanUniqueConstraint(t *testing.T) {
	f := newFixture(t)
	f.lend(t, nil)

	// サービスを通さない挿入も DB の一意制約で弾かれる
	_, err := f.conn.ExecContext(context.Background(),
		`INSERT INTO loans (reference, book_id, member_id, loan_date, due_date) VALUES ('x', ?, ?, '2024-01-01', '2024-01-02')`,
		f.book, f.member)
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKey(err))
}

func TestReturnLoanTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loan := f.lend(t, nil)

	f.clock.AdvanceDays(3)
	res, err := f.svc.ReturnLoan(ctx, key(loan.ID))
	require.NoError(t, err)
	assert.Equal(t, loan.ID, res.ID)
	assert.Equal(t, "1984", res.Book)
	assert.Equal(t, "2024-01-04", res.ReturnDate.String())

	_, err = f.svc.ReturnLoan(ctx, key(loan.ID))
	require.Error(t, err)
	assert.True(t, apierr.IsCode(err, apierr.CodeConflict))
	assert.Contains(t, err.Error(), "Book already returned")

	_, err = f.svc.ReturnLoan(ctx, "999")
	assert.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestUpdateLoanDueDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loan := f.lend(t, nil)

	// 基準は貸出日。時計が進んでも変わらない
	f.clock.AdvanceDays(20)
	require.NoError(t, f.svc.UpdateLoan(ctx, key(loan.ID), UpdateLoanRequest{DueDate: strp("2024-01-29")}))

	err := f.svc.UpdateLoan(ctx, key(loan.ID), UpdateLoanRequest{DueDate: strp("2024-02-05")})
	require.Error(t, err)
	assert.True(t, apierr.IsCode(err, apierr.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "Maximum loan period is 30 days")

	err = f.svc.UpdateLoan(ctx, key(loan.ID), UpdateLoanRequest{DueDate: strp("2023-12-31")})
	assert.True(t, apierr.IsCode(err, apierr.CodeInvalidArgument))

	got, err := f.svc.GetLoan(ctx, key(loan.ID))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-29", got.DueDate.String())
}

func TestUpdateLoanAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loan := f.lend(t, nil)

	err := f.svc.UpdateLoan(ctx, key(loan.ID), UpdateLoanRequest{
		ReturnDate: strp("2024-01-05"),
		DueDate:    strp("2024-03-01"),
	})
	require.Error(t, err)

	got, err := f.svc.GetLoan(ctx, key(loan.ID))
	require.NoError(t, err)
	assert.Nil(t, got.ReturnDate)
	assert.Equal(t, StatusActive, got.Status)

	err = f.svc.UpdateLoan(ctx, key(loan.ID), UpdateLoanRequest{ReturnDate: strp("05/01/2024")})
	assert.True(t, apierr.IsCode(err, apierr.CodeInvalidArgument))
}

func TestUpdateLoanReturnDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loan := f.lend(t, nil)

	require.NoError(t, f.svc.UpdateLoan(ctx, key(loan.ID), UpdateLoanRequest{ReturnDate: strp("2024-01-05")}))
	// PATCH では二重返却をチェックしない
	require.NoError(t, f.svc.UpdateLoan(ctx, key(loan.ID), UpdateLoanRequest{ReturnDate: strp("2024-01-06")}))

	got, err := f.svc.GetLoan(ctx, key(loan.ID))
	require.NoError(t, err)
	require.NotNil(t, got.ReturnDate)
	assert.Equal(t, "2024-01-06", got.ReturnDate.String())
	assert.Equal(t, StatusReturned, got.Status)

	err = f.svc.UpdateLoan(ctx, "999", UpdateLoanRequest{ReturnDate: strp("2024-01-05")})
	assert.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestGetLoanByReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.exec(t, `INSERT INTO authors (name) VALUES ('George Orwell')`)
	f.exec(t, `INSERT INTO book_authors (book_id, author_id) VALUES (?, ?)`, f.book, author)
	loan := f.lend(t, nil)

	got, err := f.svc.GetLoan(ctx, loan.Reference)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)
	assert.Equal(t, LoanBook{ID: f.book, Title: "1984", Authors: []string{"George Orwell"}}, got.Book)
	assert.Equal(t, LoanMember{ID: f.member, Name: "Bob"}, got.Member)

	_, err = f.svc.GetLoan(ctx, "not-a-key")
	assert.True(t, apierr.IsCode(err, apierr.CodeInvalidArgument))
}

func TestListLoansFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.exec(t, `INSERT INTO books (title) VALUES ('Animal Farm')`)

	first := f.lend(t, nil)
	_, err := f.svc.ReturnLoan(ctx, key(first.ID))
	require.NoError(t, err)
	f.lend(t, nil)
	_, err = f.svc.CreateLoan(ctx, CreateLoanRequest{BookID: other, MemberID: f.member})
	require.NoError(t, err)

	all, err := f.svc.ListLoans(ctx, LoanFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, StatusReturned, all[0].Status)
	assert.Equal(t, "Bob", all[0].MemberName)

	active, err := f.svc.ListLoans(ctx, LoanFilter{Status: StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	returned, err := f.svc.ListLoans(ctx, LoanFilter{Status: StatusReturned})
	require.NoError(t, err)
	assert.Len(t, returned, 1)

	byBook, err := f.svc.ListLoans(ctx, LoanFilter{BookID: &other})
	require.NoError(t, err)
	require.Len(t, byBook, 1)
	assert.Equal(t, "Animal Farm", byBook[0].BookTitle)

	_, err = f.svc.ListLoans(ctx, LoanFilter{Status: "lost"})
	assert.True(t, apierr.IsCode(err, apierr.CodeInvalidArgument))
}

func TestDeleteLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loan := f.lend(t, nil)

	require.NoError(t, f.svc.DeleteLoan(ctx, loan.Reference))
	_, err := f.svc.GetLoan(ctx, key(loan.ID))
	assert.True(t, apierr.IsCode(err, apierr.CodeNotFound))

	err = f.svc.DeleteLoan(ctx, key(loan.ID))
	assert.True(t, apierr.IsCode(err, apierr.CodeNotFound))

	// 削除したら本はまた貸し出せる
	f.lend(t, nil)
}

func TestCustomPolicy(t *testing.T) {
	conn := testutil.NewSQLite(t)
	clock := testutil.NewFixedClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	svc := NewService(conn, WithClock(clock), WithPolicy(Policy{DefaultDays: 7, MaxDays: 10}))
	ctx := context.Background()

	_, err := conn.ExecContext(ctx, `INSERT INTO books (title) VALUES ('B')`)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `INSERT INTO members (name, email) VALUES ('M', 'm@example.com')`)
	require.NoError(t, err)

	res, err := svc.CreateLoan(ctx, CreateLoanRequest{BookID: 1, MemberID: 1})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-08", res.DueDate.String())

	err = svc.UpdateLoan(ctx, res.Reference, UpdateLoanRequest{DueDate: strp("2024-05-12")})
	assert.True(t, apierr.IsCode(err, apierr.CodeInvalidArgument))
}
