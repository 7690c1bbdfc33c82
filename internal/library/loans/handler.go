package loans

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/loans", h.ListLoans)
	r.POST("/loans", h.CreateLoan)
	r.GET("/loans/:id", h.GetLoan)
	r.PATCH("/loans/:id", h.UpdateLoan)
	r.DELETE("/loans/:id", h.DeleteLoan)
	r.POST("/loans/:id/return", h.ReturnLoan)
}

func (h *Handler) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "book_id and member_id are required")
		return
	}
	res, err := h.svc.CreateLoan(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/loans/"+res.Reference)
	c.JSON(http.StatusCreated, res)
}

// GET /loans?status=active|returned&book_id=&member_id=
func (h *Handler) ListLoans(c *gin.Context) {
	f := LoanFilter{Status: c.Query("status")}
	var ok bool
	if f.BookID, ok = queryID(c, "book_id"); !ok {
		return
	}
	if f.MemberID, ok = queryID(c, "member_id"); !ok {
		return
	}

	res, err := h.svc.ListLoans(c.Request.Context(), f)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetLoan(c *gin.Context) {
	res, err := h.svc.GetLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateLoan(c *gin.Context) {
	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "invalid json")
		return
	}
	if err := h.svc.UpdateLoan(c.Request.Context(), c.Param("id"), req); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Loan updated successfully"})
}

func (h *Handler) DeleteLoan(c *gin.Context) {
	if err := h.svc.DeleteLoan(c.Request.Context(), c.Param("id")); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Loan deleted successfully"})
}

func (h *Handler) ReturnLoan(c *gin.Context) {
	res, err := h.svc.ReturnLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// queryID は任意の数値クエリ。未指定なら nil。
func queryID(c *gin.Context, name string) (*int64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		apierr.BadRequest(c, name+" must be a positive number")
		return nil, false
	}
	return &id, true
}
