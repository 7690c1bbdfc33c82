package members

import "library-backend/internal/platform/civil"

type Member struct {
	ID    int64
	Name  string
	Email string
}

type memberRow struct {
	Member
	ActiveLoans int
}

type memberLoanRow struct {
	ID         int64
	BookID     int64
	BookTitle  string
	LoanDate   civil.Date
	DueDate    civil.Date
	ReturnDate civil.NullDate
}
