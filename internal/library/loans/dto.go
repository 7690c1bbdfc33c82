package loans

import "library-backend/internal/platform/civil"

// ===== Requests =====

type CreateLoanRequest struct {
	BookID   int64 `json:"book_id" binding:"required"`
	MemberID int64 `json:"member_id" binding:"required"`
	LoanDays *int  `json:"loan_days,omitempty"` // 省略時は既定日数
}

// PATCH 用。どちらも "YYYY-MM-DD"
type UpdateLoanRequest struct {
	DueDate    *string `json:"due_date,omitempty"`
	ReturnDate *string `json:"return_date,omitempty"`
}

// ===== Responses =====

type CreatedLoanResponse struct {
	ID        int64      `json:"id"`
	Reference string     `json:"reference"`
	Book      string     `json:"book"`
	Member    string     `json:"member"`
	LoanDate  civil.Date `json:"loan_date"`
	DueDate   civil.Date `json:"due_date"`
}

type ReturnLoanResponse struct {
	ID         int64      `json:"id"`
	Book       string     `json:"book"`
	ReturnDate civil.Date `json:"return_date"`
}

type LoanBook struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
}

type LoanMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LoanDetailResponse struct {
	ID         int64       `json:"id"`
	Reference  string      `json:"reference"`
	Book       LoanBook    `json:"book"`
	Member     LoanMember  `json:"member"`
	LoanDate   civil.Date  `json:"loan_date"`
	DueDate    civil.Date  `json:"due_date"`
	ReturnDate *civil.Date `json:"return_date"`
	Status     string      `json:"status"`
}

type LoanListItem struct {
	ID         int64       `json:"id"`
	Reference  string      `json:"reference"`
	BookID     int64       `json:"book_id"`
	BookTitle  string      `json:"book_title"`
	MemberID   int64       `json:"member_id"`
	MemberName string      `json:"member_name"`
	LoanDate   civil.Date  `json:"loan_date"`
	DueDate    civil.Date  `json:"due_date"`
	ReturnDate *civil.Date `json:"return_date"`
	Status     string      `json:"status"`
}
