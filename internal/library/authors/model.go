package authors

import "library-backend/internal/platform/civil"

// Author は authors テーブルの1行
type Author struct {
	ID        int64
	Name      string
	BirthDate civil.NullDate
}

type authorRow struct {
	Author
	BookCount int
}

// authorBookRow: 著者詳細に載せる本
type authorBookRow struct {
	BookID          int64
	Title           string
	PublicationDate civil.NullDate
}
