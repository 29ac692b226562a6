package models

import (
	"time"

	"gorm.io/gorm"
)

// Document is the SQL row behind every catalog record. All kinds share one
// table; Kind plays the role of the collection name.
type Document struct {
	ID        string `gorm:"type:varchar(36);primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Kind      Kind           `gorm:"size:32;not null;index:idx_documents_kind_category"`
	Title     string         `gorm:"size:255;not null;index"`
	Category  string         `gorm:"size:255;index:idx_documents_kind_category"`
	Location  string         `gorm:"size:255;index"`
	Role      string         `gorm:"size:32"`
	Fields    map[string]any `gorm:"type:text;serializer:json"`
	Images    []ImageRef     `gorm:"type:text;serializer:json"`
}

func (d Document) Record() Record {
	rec := Record{
		ID:        d.ID,
		Kind:      d.Kind,
		Title:     d.Title,
		Category:  d.Category,
		Location:  d.Location,
		Role:      d.Role,
		Fields:    d.Fields,
		Images:    d.Images,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	return rec.Clone()
}

func DocumentFrom(r Record) Document {
	r = r.Clone()
	return Document{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Kind:      r.Kind,
		Title:     r.Title,
		Category:  r.Category,
		Location:  r.Location,
		Role:      r.Role,
		Fields:    r.Fields,
		Images:    r.Images,
	}
}
