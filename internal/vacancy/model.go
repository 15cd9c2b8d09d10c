package vacancy

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("vacancy not found")

const (
	SourceManual = "manual"
	SourceHH     = "hh"
)

type Vacancy struct {
	ID         int64     `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Company    string    `db:"company" json:"company"`
	Location   *string   `db:"location" json:"location"`
	URL        *string   `db:"url" json:"url"`
	Source     string    `db:"source" json:"source"`
	ExternalID *string   `db:"external_id" json:"external_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Update: частичное обновление, nil-поля остаются как есть
type Update struct {
	Title    *string
	Company  *string
	Location *string
	URL      *string
}

func (u Update) Empty() bool {
	return u.Title == nil && u.Company == nil && u.Location == nil && u.URL == nil
}
