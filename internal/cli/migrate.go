package cli

import (
	"log"

	"github.com/spf13/cobra"

	"library-backend/internal/platform/db"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the embedded schema to the configured database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.Migrate(cmd.Context(), conn); err != nil {
				return err
			}
			log.Printf("[INFO] schema applied (%s)", conn.Dialect)
			return nil
		},
	}
}
