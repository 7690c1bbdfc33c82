// Package civil は時刻を持たない日付（DATE 列、JSON の "YYYY-MM-DD"）を扱う。
package civil

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Date は UTC 0時に正規化された日付。ゼロ値は「未設定」。
type Date struct{ t time.Time }

func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today は now の日付部分（呼び出し側で UTC の clock を渡す）。
func Today(now time.Time) Date { return Of(now.UTC()) }

func Parse(s string) (Date, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool       { return d.t.IsZero() }
func (d Date) Time() time.Time    { return d.t }
func (d Date) Year() int          { return d.t.Year() }
func (d Date) String() string     { return d.t.Format(Layout) }
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// DaysSince は d - o の日数。
func (d Date) DaysSince(o Date) int {
	return int(d.t.Sub(o.t) / (24 * time.Hour))
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := Parse(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// Value は DATE 列へ "YYYY-MM-DD" 文字列で書き込む（全方言共通）。
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Of(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	}
	return fmt.Errorf("civil.Date: cannot scan %T", src)
}

func (d *Date) scanString(s string) error {
	if len(s) < len(Layout) {
		return fmt.Errorf("civil.Date: cannot scan %q", s)
	}
	p, err := Parse(s[:len(Layout)])
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// NullDate は NULL を許す DATE 列用。
type NullDate struct {
	Date  Date
	Valid bool
}

func NullOf(d Date) NullDate { return NullDate{Date: d, Valid: !d.IsZero()} }

// Ptr は Valid のときだけ値を返す（レスポンスの omitempty/null 用）。
func (n NullDate) Ptr() *Date {
	if !n.Valid {
		return nil
	}
	d := n.Date
	return &d
}

func (n NullDate) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Date.Value()
}

func (n *NullDate) Scan(src any) error {
	if src == nil {
		*n = NullDate{}
		return nil
	}
	if err := n.Date.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n NullDate) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Date.MarshalJSON()
}

// ParsePtr はリクエストの任意日付フィールド用。nil / 空文字は未指定扱い。
func ParsePtr(s *string) (NullDate, error) {
	if s == nil || *s == "" {
		return NullDate{}, nil
	}
	d, err := Parse(*s)
	if err != nil {
		return NullDate{}, err
	}
	return NullOf(d), nil
}
