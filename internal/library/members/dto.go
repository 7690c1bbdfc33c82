package members

import "library-backend/internal/platform/civil"

// ===== Requests =====

type CreateMemberRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// PATCH 用。nil のフィールドは変更しない
type UpdateMemberRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
}

// ===== Responses =====

type CreatedMemberResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type MemberListItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ActiveLoans int    `json:"active_loans"`
}

type MemberLoan struct {
	ID        int64      `json:"id"`
	BookID    int64      `json:"book_id"`
	BookTitle string     `json:"book_title"`
	LoanDate  civil.Date `json:"loan_date"`
	DueDate   civil.Date `json:"due_date"`
	Returned  bool       `json:"returned"`
}

type MemberDetailResponse struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Loans []MemberLoan `json:"loans"`
}
