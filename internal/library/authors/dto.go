package authors

import "library-backend/internal/platform/civil"

// ===== Requests =====

type CreateAuthorRequest struct {
	Name      string  `json:"name" binding:"required"`
	BirthDate *string `json:"birth_date,omitempty"` // "YYYY-MM-DD"
}

// PATCH 用。nil のフィールドは変更しない
type UpdateAuthorRequest struct {
	Name      *string `json:"name,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
}

// ===== Responses =====

type CreatedAuthorResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AuthorListItem struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	BirthDate *civil.Date `json:"birth_date"`
	BookCount int         `json:"book_count"`
}

type AuthorBook struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	PublicationYear *int   `json:"publication_year"`
}

type AuthorDetailResponse struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	BirthDate *civil.Date  `json:"birth_date"`
	Books     []AuthorBook `json:"books"`
}
