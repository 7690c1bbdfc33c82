package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/library/loans"
	"library-backend/internal/platform/db"
	"library-backend/internal/testutil"
)

func init() { gin.SetMode(gin.TestMode) }

var today = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type client struct {
	t *testing.T
	r *gin.Engine
}

func newClient(t *testing.T, mode string) *client {
	t.Helper()
	cfg := db.DefaultConfig()
	cfg.Mode = mode
	conn := testutil.NewSQLite(t)
	clock := testutil.NewFixedClock(today)
	return &client{t: t, r: NewRouter(cfg, conn, loans.WithClock(clock))}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(c.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)

	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func (c *client) list(path string) []map[string]any {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var out []map[string]any
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (c *client) seedBookAndMember() {
	c.t.Helper()
	code, _ := c.do(http.MethodPost, "/books", map[string]any{"title": "1984", "isbn": "978-0451524935"})
	require.Equal(c.t, http.StatusCreated, code)
	code, _ = c.do(http.MethodPost, "/members", map[string]any{"name": "Bob", "email": "bob@example.com"})
	require.Equal(c.t, http.StatusCreated, code)
}

func TestHomeAndHealth(t *testing.T) {
	c := newClient(t, "release")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, homeText, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w = httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	code, body := c.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not found", body["error"])
}

func TestSwaggerOnlyInDevMode(t *testing.T) {
	dev := newClient(t, "dev")
	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	w := httptest.NewRecorder()
	dev.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/loans/{id}/return")

	rel := newClient(t, "release")
	code, _ := rel.do(http.MethodGet, "/swagger/doc.json", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLendScenario(t *testing.T) {
	c := newClient(t, "release")
	c.seedBookAndMember()

	code, body := c.do(http.MethodPost, "/loans", map[string]any{"book_id": 1, "member_id": 1})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "1984", body["book"])
	assert.Equal(t, "Bob", body["member"])
	assert.Equal(t, "2024-06-01", body["loan_date"])
	assert.Equal(t, "2024-06-15", body["due_date"])

	code, body = c.do(http.MethodPost, "/loans", map[string]any{"book_id": 1, "member_id": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Book is already on loan", body["error"])

	books := c.list("/books")
	require.Len(t, books, 1)
	assert.Equal(t, false, books[0]["available"])

	code, body = c.do(http.MethodPost, "/loans/1/return", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2024-06-01", body["return_date"])

	code, body = c.do(http.MethodPost, "/loans/1/return", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Book already returned", body["error"])

	books = c.list("/books")
	assert.Equal(t, true, books[0]["available"])

	members := c.list("/members")
	assert.Equal(t, float64(0), members[0]["active_loans"])
}

func TestLoanValidation(t *testing.T) {
	c := newClient(t, "release")
	c.seedBookAndMember()

	code, body := c.do(http.MethodPost, "/loans", map[string]any{"book_id": 1, "member_id": 1, "loan_days": 31})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Maximum loan period is 30 days", body["error"])

	code, body = c.do(http.MethodPost, "/loans", map[string]any{"book_id": 9, "member_id": 1})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Book or member not found", body["error"])

	code, _ = c.do(http.MethodPost, "/loans", `{"book_id": 1,`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = c.do(http.MethodPost, "/loans", map[string]any{"book_id": 1, "member_id": 1, "loan_days": 30})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "2024-07-01", body["due_date"])
	ref := body["reference"].(string)

	code, body = c.do(http.MethodPatch, "/loans/"+ref, map[string]any{"due_date": "2024-07-02"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Maximum loan period is 30 days", body["error"])

	code, body = c.do(http.MethodPatch, "/loans/1", map[string]any{"due_date": "2024-06-20"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Loan updated successfully", body["message"])

	code, body = c.do(http.MethodGet, "/loans/"+ref, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2024-06-20", body["due_date"])
	assert.Equal(t, "active", body["status"])
	assert.Nil(t, body["return_date"])

	code, _ = c.do(http.MethodPatch, "/loans/1", map[string]any{"due_date": "June 20"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAssociationScenario(t *testing.T) {
	c := newClient(t, "release")
	c.seedBookAndMember()
	code, _ := c.do(http.MethodPost, "/authors", map[string]any{"name": "George Orwell", "birth_date": "1903-06-25"})
	require.Equal(t, http.StatusCreated, code)

	code, body := c.do(http.MethodPost, "/books/1/authors/1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Author added to book successfully", body["message"])

	code, body = c.do(http.MethodPost, "/books/1/authors/1", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Author already associated with this book", body["error"])

	code, body = c.do(http.MethodDelete, "/books/1/authors/1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Author removed from book successfully", body["message"])

	code, body = c.do(http.MethodDelete, "/books/1/authors/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Author not associated with this book", body["error"])

	code, _ = c.do(http.MethodPost, "/books/1/authors/1", nil)
	assert.Equal(t, http.StatusOK, code)

	authors := c.list("/authors")
	require.Len(t, authors, 1)
	assert.Equal(t, float64(1), authors[0]["book_count"])
	assert.Equal(t, "1903-06-25", authors[0]["birth_date"])

	code, _ = c.do(http.MethodPost, "/books/1/authors/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteBookCascadesLoans(t *testing.T) {
	c := newClient(t, "release")
	c.seedBookAndMember()

	code, _ := c.do(http.MethodPost, "/loans", map[string]any{"book_id": 1, "member_id": 1})
	require.Equal(t, http.StatusCreated, code)

	code, body := c.do(http.MethodDelete, "/books/1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Book deleted successfully", body["message"])

	code, _ = c.do(http.MethodGet, "/loans/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = c.do(http.MethodGet, "/books/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, c.list("/loans"))
}

func TestEntityValidation(t *testing.T) {
	c := newClient(t, "release")
	c.seedBookAndMember()

	code, body := c.do(http.MethodPost, "/books", map[string]any{"title": "Dup", "isbn": "978-0451524935"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Book with this ISBN already exists", body["error"])

	code, body = c.do(http.MethodPost, "/members", map[string]any{"name": "Bobby", "email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Member with this email already exists", body["error"])

	code, _ = c.do(http.MethodPost, "/members", map[string]any{"name": "X", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodPost, "/books", map[string]any{"title": "X", "publication_date": "1949"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodGet, "/members/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodGet, "/authors/42", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = c.do(http.MethodPatch, "/members/1", map[string]any{"name": "Robert"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Member updated successfully", body["message"])
}
