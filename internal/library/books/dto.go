package books

import "library-backend/internal/platform/civil"

// ===== Requests =====

type CreateBookRequest struct {
	Title           string  `json:"title" binding:"required"`
	ISBN            *string `json:"isbn,omitempty"`
	PublicationDate *string `json:"publication_date,omitempty"` // "YYYY-MM-DD"
	AuthorIDs       []int64 `json:"author_ids,omitempty"`
}

// PATCH 用。nil は変更なし。AuthorIDs は指定されたら関連付けを置き換える（空配列で全解除）
type UpdateBookRequest struct {
	Title           *string  `json:"title,omitempty"`
	ISBN            *string  `json:"isbn,omitempty"` // "" で ISBN を外す
	PublicationDate *string  `json:"publication_date,omitempty"`
	AuthorIDs       *[]int64 `json:"author_ids,omitempty"`
}

// ===== Responses =====

type CreatedBookResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type BookAuthor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookListItem struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	ISBN            *string      `json:"isbn"`
	PublicationDate *civil.Date  `json:"publication_date"`
	Authors         []BookAuthor `json:"authors"`
	Available       bool         `json:"available"`
}

type BookLoan struct {
	ID       int64      `json:"id"`
	Member   string     `json:"member"`
	LoanDate civil.Date `json:"loan_date"`
	DueDate  civil.Date `json:"due_date"`
	Returned bool       `json:"returned"`
}

type BookDetailResponse struct {
	BookListItem
	Loans []BookLoan `json:"loans"`
}
