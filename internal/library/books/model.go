package books

import (
	"database/sql"

	"library-backend/internal/platform/civil"
)

// Book は books テーブルの1行。ISBN 未指定は NULL。
type Book struct {
	ID              int64
	Title           string
	ISBN            sql.NullString
	PublicationDate civil.NullDate
}

type bookRow struct {
	Book
	Available bool
}

// authorRef: 本に紐づく著者（book_authors ⋈ authors）
type authorRef struct {
	BookID   int64
	AuthorID int64
	Name     string
}

type bookLoanRow struct {
	ID         int64
	MemberName string
	LoanDate   civil.Date
	DueDate    civil.Date
	ReturnDate civil.NullDate
}
