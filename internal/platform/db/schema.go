package db

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate は方言ごとの埋め込みスキーマを適用する。CREATE ... IF NOT EXISTS なので何度呼んでもよい。
func Migrate(ctx context.Context, c *Conn) error {
	buf, err := schemaFS.ReadFile("schema/" + string(c.Dialect) + ".sql")
	if err != nil {
		return fmt.Errorf("schema for %s not found: %w", c.Dialect, err)
	}
	// MySQL ドライバは multiStatements なしだと複文を受け付けないので1文ずつ流す
	for _, stmt := range splitStatements(string(buf)) {
		if _, err := c.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w\n%s", err, stmt)
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
