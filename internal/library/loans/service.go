package loans

import (
	"context"
	"crypto/rand"
	"time"

	ulid "github.com/oklog/ulid/v2"
	"github.com/samber/lo"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/civil"
	"library-backend/internal/platform/db"
)

const (
	msgAlreadyOnLoan   = "Book is already on loan"
	msgAlreadyReturned = "Book already returned"
)

// -------------- Clock & ID --------------

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// -------------- Service --------------

type Service struct {
	conn   *db.Conn
	store  *Store
	policy Policy
	clock  Clock
	id     IDGen
}

type Option func(*Service)

func WithClock(c Clock) Option   { return func(s *Service) { s.clock = c } }
func WithIDGen(g IDGen) Option   { return func(s *Service) { s.id = g } }
func WithPolicy(p Policy) Option { return func(s *Service) { s.policy = p } }

func NewService(conn *db.Conn, opts ...Option) *Service {
	s := &Service{
		conn:   conn,
		store:  NewStore(conn),
		policy: DefaultPolicy(),
		clock:  realClock{},
		id:     ulidGen{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Policy() Policy { return s.policy }

// POST /loans
// 本の行をロックしてから貸出中チェック→挿入。DB 側の一意制約（貸出中は1冊1件）でも弾く。
func (s *Service) CreateLoan(ctx context.Context, in CreateLoanRequest) (CreatedLoanResponse, error) {
	now := s.clock.Now()
	today := civil.Today(now)

	var (
		l      = &Loan{BookID: in.BookID, MemberID: in.MemberID, Reference: s.id.NewULID(now), LoanDate: today}
		title  string
		member string
	)
	err := s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		if title, err = s.store.lockBook(ctx, tx, in.BookID); err != nil {
			return err
		}
		if member, err = s.store.memberName(ctx, tx, in.MemberID); err != nil {
			return err
		}
		active, err := s.store.hasActiveLoan(ctx, tx, in.BookID)
		if err != nil {
			return err
		}
		if active {
			return apierr.ErrConflict(msgAlreadyOnLoan)
		}
		if l.DueDate, err = s.policy.DueDate(today, in.LoanDays); err != nil {
			return err
		}

		if err := s.store.Insert(ctx, tx, l); err != nil {
			switch {
			case db.IsDuplicateKey(err):
				return apierr.ErrConflict(msgAlreadyOnLoan)
			case db.IsForeignKeyViolation(err):
				return apierr.ErrNotFound(msgBookOrMemberNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return CreatedLoanResponse{}, err
	}

	return CreatedLoanResponse{
		ID:        l.ID,
		Reference: l.Reference,
		Book:      title,
		Member:    member,
		LoanDate:  l.LoanDate,
		DueDate:   l.DueDate,
	}, nil
}

// PATCH /loans/:id
// 日付の形式と期限ルールを先にすべて検証してから1回で書き込む（途中まで反映されることはない）。
// return_date はそのまま設定する（二重返却のチェックは ReturnLoan のみ）。
func (s *Service) UpdateLoan(ctx context.Context, key string, in UpdateLoanRequest) error {
	var due, ret civil.Date
	var err error
	if in.DueDate != nil {
		if due, err = civil.Parse(*in.DueDate); err != nil {
			return apierr.ErrInvalid(err.Error())
		}
	}
	if in.ReturnDate != nil {
		if ret, err = civil.Parse(*in.ReturnDate); err != nil {
			return apierr.ErrInvalid(err.Error())
		}
	}

	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		l, err := s.store.Get(ctx, tx, key, true)
		if err != nil {
			return err
		}
		set := map[string]any{}
		if in.DueDate != nil {
			if err := s.policy.ValidateDue(l.LoanDate, due); err != nil {
				return err
			}
			set["due_date"] = due
		}
		if in.ReturnDate != nil {
			set["return_date"] = ret
		}
		return s.store.Update(ctx, tx, l.ID, set)
	})
}

// POST /loans/:id/return
func (s *Service) ReturnLoan(ctx context.Context, key string) (ReturnLoanResponse, error) {
	today := civil.Today(s.clock.Now())

	var resp ReturnLoanResponse
	err := s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		l, err := s.store.Get(ctx, tx, key, true)
		if err != nil {
			return err
		}
		if !l.Active() {
			return apierr.ErrConflict(msgAlreadyReturned)
		}
		if err := s.store.Update(ctx, tx, l.ID, map[string]any{"return_date": today}); err != nil {
			return err
		}
		title, err := s.store.bookTitle(ctx, tx, l.BookID)
		if err != nil {
			return err
		}
		resp = ReturnLoanResponse{ID: l.ID, Book: title, ReturnDate: today}
		return nil
	})
	return resp, err
}

// DELETE /loans/:id
func (s *Service) DeleteLoan(ctx context.Context, key string) error {
	return s.conn.InTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		l, err := s.store.Get(ctx, tx, key, true)
		if err != nil {
			return err
		}
		return s.store.Delete(ctx, tx, l.ID)
	})
}

// GetLoan は貸出と本の著者を同じ読み取り専用 Tx で取る。
func (s *Service) GetLoan(ctx context.Context, key string) (LoanDetailResponse, error) {
	var (
		r       *loanRow
		authors []string
	)
	err := db.ReadOnly(ctx, s.conn.DB, func(ctx context.Context, tx db.DBTX) error {
		var err error
		if r, err = s.store.GetRow(ctx, tx, key); err != nil {
			return err
		}
		authors, err = s.store.AuthorNames(ctx, tx, r.BookID)
		return err
	})
	if err != nil {
		return LoanDetailResponse{}, err
	}
	return LoanDetailResponse{
		ID:         r.ID,
		Reference:  r.Reference,
		Book:       LoanBook{ID: r.BookID, Title: r.BookTitle, Authors: authors},
		Member:     LoanMember{ID: r.MemberID, Name: r.MemberName},
		LoanDate:   r.LoanDate,
		DueDate:    r.DueDate,
		ReturnDate: r.ReturnDate.Ptr(),
		Status:     r.Status(),
	}, nil
}

func (s *Service) ListLoans(ctx context.Context, f LoanFilter) ([]LoanListItem, error) {
	if f.Status != "" && f.Status != StatusActive && f.Status != StatusReturned {
		return nil, apierr.ErrInvalid("status must be active or returned")
	}
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(r loanRow, _ int) LoanListItem {
		return LoanListItem{
			ID:         r.ID,
			Reference:  r.Reference,
			BookID:     r.BookID,
			BookTitle:  r.BookTitle,
			MemberID:   r.MemberID,
			MemberName: r.MemberName,
			LoanDate:   r.LoanDate,
			DueDate:    r.DueDate,
			ReturnDate: r.ReturnDate.Ptr(),
			Status:     r.Status(),
		}
	}), nil
}
