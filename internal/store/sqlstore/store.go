package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/petermazzocco/interior-admin/models"
)

// Open connects to postgres or, for local runs and tests, a sqlite file.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Document{}); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	return nil
}

// Store keeps every collection in the documents table.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context, kind models.Kind, filter models.Filter) ([]models.Record, error) {
	if filter.Empty {
		return []models.Record{}, nil
	}
	q := s.db.WithContext(ctx).Model(&models.Document{}).Where("kind = ?", kind)
	if filter.Title != "" {
		q = q.Where("title = ?", filter.Title)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if len(filter.RoleNot) > 0 {
		q = q.Where("role NOT IN ?", filter.RoleNot)
	}
	if models.PolicyFor(kind).NewestFirst {
		q = q.Order("created_at DESC")
	} else {
		q = q.Order("created_at ASC")
	}

	var docs []models.Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, models.PersistenceError(err, "Could not load %s.", kind)
	}
	out := make([]models.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Record())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, kind models.Kind, id string) (models.Record, error) {
	doc, err := find(s.db.WithContext(ctx), kind, id)
	if err != nil {
		return models.Record{}, err
	}
	return doc.Record(), nil
}

// Create assigns a uuid. Kinds whose policy wants unique titles are checked
// for an existing title in the same category first.
func (s *Store) Create(ctx context.Context, kind models.Kind, rec models.Record) (models.Record, error) {
	doc := models.DocumentFrom(rec)
	doc.ID = uuid.NewString()
	doc.Kind = kind

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if models.PolicyFor(kind).UniqueTitle {
			var n int64
			if err := tx.Model(&models.Document{}).
				Where("kind = ? AND category = ? AND title = ?", kind, doc.Category, doc.Title).
				Count(&n).Error; err != nil {
				return models.PersistenceError(err, "Could not save the %s record.", kind)
			}
			if n > 0 {
				return models.DuplicateError("A design titled %q already exists in %s.", doc.Title, strings.ReplaceAll(doc.Category, "-", " "))
			}
		}
		if err := tx.Create(&doc).Error; err != nil {
			return models.PersistenceError(err, "Could not save the %s record.", kind)
		}
		return nil
	})
	if err != nil {
		return models.Record{}, err
	}
	return doc.Record(), nil
}

// Update writes only the columns the patch touches.
func (s *Store) Update(ctx context.Context, kind models.Kind, id string, patch models.Patch) (models.Record, error) {
	var out models.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := find(tx, kind, id)
		if err != nil {
			return err
		}
		next := models.DocumentFrom(patch.Apply(doc.Record()))
		next.CreatedAt = doc.CreatedAt
		if err := tx.Model(&doc).Select(columns(patch)).Updates(&next).Error; err != nil {
			return models.PersistenceError(err, "Could not update the %s record.", kind)
		}
		updated, err := find(tx, kind, id)
		if err != nil {
			return err
		}
		out = updated.Record()
		return nil
	})
	return out, err
}

func (s *Store) Delete(ctx context.Context, kind models.Kind, id string) error {
	res := s.db.WithContext(ctx).Where("kind = ? AND id = ?", kind, id).Delete(&models.Document{})
	if res.Error != nil {
		return models.PersistenceError(res.Error, "Could not delete the %s record.", kind)
	}
	if res.RowsAffected == 0 {
		return models.NotFoundError(kind, id)
	}
	return nil
}

func find(db *gorm.DB, kind models.Kind, id string) (models.Document, error) {
	var doc models.Document
	err := db.Where("kind = ? AND id = ?", kind, id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, models.NotFoundError(kind, id)
	}
	if err != nil {
		return doc, models.PersistenceError(err, "Could not load the %s record.", kind)
	}
	return doc, nil
}

func columns(p models.Patch) []string {
	cols := []string{"UpdatedAt"}
	if p.Title != nil {
		cols = append(cols, "Title")
	}
	if p.Category != nil {
		cols = append(cols, "Category")
	}
	if p.Location != nil {
		cols = append(cols, "Location")
	}
	if p.Role != nil {
		cols = append(cols, "Role")
	}
	if len(p.Fields) > 0 {
		cols = append(cols, "Fields")
	}
	if p.Images != nil {
		cols = append(cols, "Images")
	}
	return cols
}
