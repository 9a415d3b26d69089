// Package model defines the curriculum data types shared across candlecourse:
// steps, lessons and the daily OHLC points that back each lesson chart.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used for point times.
const DateLayout = "2006-01-02"

// Date is a calendar day. It marshals as "YYYY-MM-DD" in JSON and YAML.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// MustDate is ParseDate for literals; it panics on malformed input.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String returns the ISO-8601 date.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes the date as a JSON string. Defined explicitly so the
// embedded time.Time's RFC 3339 encoding is not promoted.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" JSON string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	return d.UnmarshalText([]byte(s))
}

// Point is one daily candle.
type Point struct {
	Time  Date    `json:"time" yaml:"time"`
	Open  float64 `json:"open" yaml:"open"`
	High  float64 `json:"high" yaml:"high"`
	Low   float64 `json:"low" yaml:"low"`
	Close float64 `json:"close" yaml:"close"`
}

// Bullish reports whether the candle closed at or above its open.
func (p Point) Bullish() bool {
	return p.Close >= p.Open
}

// BodyTop returns max(open, close).
func (p Point) BodyTop() float64 {
	if p.Open > p.Close {
		return p.Open
	}
	return p.Close
}

// BodyBottom returns min(open, close).
func (p Point) BodyBottom() float64 {
	if p.Open < p.Close {
		return p.Open
	}
	return p.Close
}

// Lesson is a single curriculum unit.
type Lesson struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"` // Markdown, rendered as rich text
	Data        []Point `json:"data"`
	StepID      string  `json:"step_id,omitempty"` // Empty for ungrouped lessons
}

// Step groups lessons under a shared theme.
type Step struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Lessons     []Lesson `json:"lessons"`
}
