package models

import (
	"time"
)

// Role, Department and Position are lookup entities owned by the
// organization-management side of the backend; this service only reads them.

type Role struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Department struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Position struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Department) Summary() *RefSummary {
	return &RefSummary{ID: d.ID, Name: d.Name}
}

func (p *Position) Summary() *RefSummary {
	return &RefSummary{ID: p.ID, Name: p.Name}
}
