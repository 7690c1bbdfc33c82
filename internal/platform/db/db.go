package db

import (
	"database/sql"
	"fmt"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Conn はコネクションプールとその方言をまとめたもの。
// 各 Store / Service にはこれを明示的に渡す（グローバルなハンドルは持たない）。
type Conn struct {
	*sql.DB
	Dialect Dialect
}

func Connect(c DatabaseConfig) (*Conn, error) {
	d, err := ParseDialect(c.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(d, c)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("接続準備に失敗: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("DB接続に失敗: %w", err)
	}

	switch d {
	case SQLite:
		// SQLite は writer が1つなので1接続に絞る
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	default:
		// 接続プール（合算がサーバ側の max_connections を超えないよう配分する）
		sqlDB.SetMaxOpenConns(80)
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	return &Conn{DB: sqlDB, Dialect: d}, nil
}

// OpenSQLite は設定ファイルなしで SQLite を開く（ローカル実行・テスト用）。
func OpenSQLite(path string) (*Conn, error) {
	return Connect(DatabaseConfig{Driver: string(SQLite), Path: path})
}

func buildDSN(d Dialect, c DatabaseConfig) (string, error) {
	switch d {
	case MySQL:
		mc := mysql.NewConfig()
		mc.User = c.Username
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
		mc.DBName = c.DBName
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Timeout = 3 * time.Second
		mc.ReadTimeout = 5 * time.Second
		mc.WriteTimeout = 5 * time.Second
		return mc.FormatDSN(), nil
	case Postgres:
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&connect_timeout=3",
			c.Username, c.Password, c.Host, c.Port, c.DBName), nil
	case SQLite:
		if c.Path == "" {
			return "", fmt.Errorf("database.path is required for %s", SQLite)
		}
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", c.Path), nil
	}
	return "", fmt.Errorf("unsupported driver %q", d)
}
