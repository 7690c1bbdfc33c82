package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"library-backend/internal/library/authors"
	"library-backend/internal/library/books"
	"library-backend/internal/library/members"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample authors, books and members",
		Long: `Insert a small sample catalogue for local development.

Books and members that already exist (same ISBN / email) are skipped,
so running seed twice is harmless.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer conn.Close()
			return Seed(cmd.Context(), conn)
		},
	}
}

type seedBook struct {
	title, isbn, published string
	author                 string
}

var (
	seedAuthors = []authors.CreateAuthorRequest{
		{Name: "George Orwell", BirthDate: strp("1903-06-25")},
		{Name: "Aldous Huxley", BirthDate: strp("1894-07-26")},
	}
	seedBooks = []seedBook{
		{"1984", "978-0451524935", "1949-06-08", "George Orwell"},
		{"Animal Farm", "978-0451526342", "1945-08-17", "George Orwell"},
		{"Brave New World", "978-0060850524", "1932-01-01", "Aldous Huxley"},
	}
	seedMembers = []members.CreateMemberRequest{
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Alice", Email: "alice@example.com"},
	}
)

// Seed はサンプルデータを投入する。既にある本・会員（Conflict）は飛ばす。
func Seed(ctx context.Context, conn *db.Conn) error {
	authorSvc := authors.NewService(conn)
	bookSvc := books.NewService(conn)
	memberSvc := members.NewService(members.NewStore(conn))

	existing, err := authorSvc.ListAuthors(ctx)
	if err != nil {
		return err
	}
	ids := map[string]int64{}
	for _, a := range existing {
		ids[a.Name] = a.ID
	}
	for _, a := range seedAuthors {
		if _, ok := ids[a.Name]; ok {
			continue
		}
		res, err := authorSvc.CreateAuthor(ctx, a)
		if err != nil {
			return err
		}
		ids[a.Name] = res.ID
	}

	for _, b := range seedBooks {
		_, err := bookSvc.CreateBook(ctx, books.CreateBookRequest{
			Title:           b.title,
			ISBN:            strp(b.isbn),
			PublicationDate: strp(b.published),
			AuthorIDs:       []int64{ids[b.author]},
		})
		if err := skipConflict(err, b.title); err != nil {
			return err
		}
	}

	for _, m := range seedMembers {
		_, err := memberSvc.CreateMember(ctx, m)
		if err := skipConflict(err, m.Email); err != nil {
			return err
		}
	}
	log.Printf("[INFO] seeded %d authors, %d books, %d members", len(seedAuthors), len(seedBooks), len(seedMembers))
	return nil
}

func skipConflict(err error, what string) error {
	if apierr.IsCode(err, apierr.CodeConflict) {
		log.Printf("[WARN] %s already exists, skipped", what)
		return nil
	}
	return err
}

func strp(s string) *string { return &s }
