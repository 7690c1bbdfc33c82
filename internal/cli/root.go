// Package cli は library-backend のコマンド（serve / migrate / seed）。
package cli

import (
	"log"

	"github.com/spf13/cobra"

	"library-backend/internal/platform/db"
)

// RootOptions は全コマンド共通のフラグ。
type RootOptions struct {
	ConfigPath string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "library-backend",
		Short: "Library record keeper",
		Long:  "HTTP API for books, authors, members and loans of a small library.",
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", db.DefaultConfigPath, "path to config.yaml")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// open は設定を読み込んで DB に接続する。
func (o *RootOptions) open() (*db.Config, *db.Conn, error) {
	cfg, err := db.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[INFO] mode:%s driver:%s\n", cfg.Mode, cfg.DB.Driver)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}
