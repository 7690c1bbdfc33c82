package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInTxRollback(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	sb := conn.Dialect.Builder()

	boom := errors.New("boom")
	err := conn.InTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := Exec(ctx, tx, sb.Insert("authors").Columns("name").Values("a")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, QueryRow(ctx, conn, sb.Select("COUNT(*)").From("authors")).Scan(&n))
	assert.Zero(t, n)
}

func TestInsertID(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	sb := conn.Dialect.Builder()

	var ids []int64
	err := conn.InTx(ctx, func(ctx context.Context, tx DBTX) error {
		for _, name := range []string{"a", "b"} {
			id, err := conn.InsertID(ctx, tx, sb.Insert("authors").Columns("name").Values(name))
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestQueryRowBuildError(t *testing.T) {
	conn := openTestDB(t)
	// テーブル名なしの UPDATE はビルド時点でエラー
	var n int
	err := QueryRow(context.Background(), conn, conn.Dialect.Builder().Update("")).Scan(&n)
	assert.Error(t, err)
}
