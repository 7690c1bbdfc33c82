package db

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
)

type Dialect string

const (
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "pgx"
)

func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case MySQL, SQLite, Postgres:
		return Dialect(driver), nil
	case "postgres":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q (mysql | sqlite3 | pgx)", driver)
}

// DriverName は database/sql に登録されているドライバ名。
func (d Dialect) DriverName() string { return string(d) }

// Builder は方言に合わせたプレースホルダの StatementBuilder を返す。
func (d Dialect) Builder() sq.StatementBuilderType {
	if d == Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// LockRows は SELECT に行ロックを付ける。SQLite は DB 単位でロックされるので何もしない。
func (d Dialect) LockRows(b sq.SelectBuilder) sq.SelectBuilder {
	if d == SQLite {
		return b
	}
	return b.Suffix("FOR UPDATE")
}

// ReturningID は INSERT で採番された id を返すために RETURNING が必要か。
// MySQL / SQLite は LastInsertId が使える。
func (d Dialect) ReturningID() bool { return d == Postgres }

// IsDuplicateKey は一意制約違反かどうか（MySQL 1062 / SQLite UNIQUE / PostgreSQL 23505）。
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// IsForeignKeyViolation は外部キー制約違反かどうか（MySQL 1451/1452 / SQLite FOREIGNKEY / PostgreSQL 23503）。
func IsForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1452 || me.Number == 1451
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23503"
	}
	return false
}
