// Package server は gin のルーティングを組み立てる。
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "library-backend/internal/docs"
	"library-backend/internal/library/authors"
	"library-backend/internal/library/books"
	"library-backend/internal/library/loans"
	"library-backend/internal/library/members"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

const homeText = "This is the home page of a library management system"

// NewRouter は全機能のルートを登録した gin.Engine を返す。
// loanOpts はテストで時計を差し替えるため。
func NewRouter(cfg *db.Config, conn *db.Conn, loanOpts ...loans.Option) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, homeText) })
	// ヘルス
	r.GET("/healthz", func(c *gin.Context) {
		if err := conn.PingContext(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	policy := loans.DefaultPolicy()
	if cfg.Library.MaxLoanDays > 0 {
		policy = loans.Policy{DefaultDays: cfg.Library.DefaultLoanDays, MaxDays: cfg.Library.MaxLoanDays}
	}
	opts := append([]loans.Option{loans.WithPolicy(policy)}, loanOpts...)

	authors.RegisterRoutes(r, authors.NewService(conn))
	books.RegisterRoutes(r, books.NewService(conn))
	members.RegisterRoutes(r, members.NewService(members.NewStore(conn)))
	loans.RegisterRoutes(r, loans.NewService(conn, opts...))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierr.Body("Not found"))
	})
	return r
}
