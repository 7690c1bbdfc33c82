package loans

import "library-backend/internal/platform/civil"

const (
	StatusActive   = "active"
	StatusReturned = "returned"
)

// Loan は loans テーブルの1行。ReturnDate が NULL の間は貸出中。
type Loan struct {
	ID         int64
	Reference  string // ULID
	BookID     int64
	MemberID   int64
	LoanDate   civil.Date
	DueDate    civil.Date
	ReturnDate civil.NullDate
}

func (l *Loan) Active() bool { return !l.ReturnDate.Valid }

func (l *Loan) Status() string {
	if l.Active() {
		return StatusActive
	}
	return StatusReturned
}

type loanRow struct {
	Loan
	BookTitle  string
	MemberName string
}

type LoanFilter struct {
	Status   string // "" | active | returned
	BookID   *int64
	MemberID *int64
}
