package store

import (
	"time"

	"github.com/Evthron/Increvise-sub000/internal/engine/ranges"
)

// RangeRecordModel is a persisted Range Record.
type RangeRecordModel struct {
	ID         string    `gorm:"column:id;primaryKey;size:36"`
	HostPath   string    `gorm:"column:host_path;index;size:1024;not null"`
	ChildPath  string    `gorm:"column:child_path;uniqueIndex;size:1024;not null"`
	Identifier string    `gorm:"column:identifier;size:255"`
	StartLine  int       `gorm:"column:start_line"`
	EndLine    int       `gorm:"column:end_line"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (RangeRecordModel) TableName() string {
	return "range_records"
}

// ReviewItemModel is the review queue entry of one child.
type ReviewItemModel struct {
	ID         string    `gorm:"column:id;primaryKey;size:36"`
	ChildPath  string    `gorm:"column:child_path;uniqueIndex;size:1024;not null"`
	HostPath   string    `gorm:"column:host_path;index;size:1024"`
	Identifier string    `gorm:"column:identifier;size:255"`
	DueAt      time.Time `gorm:"column:due_at;index"`
	Rank       float64   `gorm:"column:rank;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (ReviewItemModel) TableName() string {
	return "review_items"
}

// ReviewItem is a child waiting for review.
type ReviewItem struct {
	ID         string
	ChildPath  string
	HostPath   string
	Identifier string
	DueAt      time.Time
	Rank       float64
}

func recordToDomain(m RangeRecordModel) ranges.Record {
	r := ranges.NewRecord(m.ChildPath, m.StartLine, m.EndLine)
	r.ID = m.ID
	r.HostPath = m.HostPath
	r.Identifier = m.Identifier
	r.CreatedAt = m.CreatedAt
	return r
}

func recordToModel(host string, r ranges.Record) RangeRecordModel {
	return RangeRecordModel{
		ID:         r.ID,
		HostPath:   host,
		ChildPath:  r.ChildPath,
		Identifier: r.Identifier,
		StartLine:  r.OriginalStart,
		EndLine:    r.OriginalEnd,
		CreatedAt:  r.CreatedAt,
	}
}

func reviewToDomain(m ReviewItemModel) ReviewItem {
	return ReviewItem{
		ID:         m.ID,
		ChildPath:  m.ChildPath,
		HostPath:   m.HostPath,
		Identifier: m.Identifier,
		DueAt:      m.DueAt,
		Rank:       m.Rank,
	}
}
