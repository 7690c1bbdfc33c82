package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Txを開始して fn を実行。fn が nil を返せば COMMIT、エラーなら ROLLBACK。
func RunInTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// 読み取り専用Tx
func ReadOnly(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) error {
	return RunInTx(ctx, db, &sql.TxOptions{ReadOnly: true}, fn)
}

// InTx は Conn 上で RunInTx を実行する。
func (c *Conn) InTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return RunInTx(ctx, c.DB, nil, fn)
}

// Exec は squirrel のビルダーを組み立てて実行する。
func Exec(ctx context.Context, q DBTX, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.ExecContext(ctx, query, args...)
}

// Query は squirrel の SELECT を実行する。呼び出し側で rows.Close() すること。
func Query(ctx context.Context, q DBTX, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.QueryContext(ctx, query, args...)
}

// QueryRow は squirrel の SELECT を1行で実行する。ビルドエラーは Scan 時に返る。
func QueryRow(ctx context.Context, q DBTX, b sq.Sqlizer) RowScanner {
	query, args, err := b.ToSql()
	if err != nil {
		return errRow{err: err}
	}
	return q.QueryRowContext(ctx, query, args...)
}

// RowScanner は *sql.Row と同じ Scan を持つ。
type RowScanner interface {
	Scan(dest ...any) error
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// InsertID は INSERT を実行して採番された id を返す。
// PostgreSQL は RETURNING id、それ以外は LastInsertId を使う。
func (c *Conn) InsertID(ctx context.Context, q DBTX, b sq.InsertBuilder) (int64, error) {
	if c.Dialect.ReturningID() {
		var id int64
		if err := QueryRow(ctx, q, b.Suffix("RETURNING id")).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := Exec(ctx, q, b)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
