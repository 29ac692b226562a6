package firestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/petermazzocco/interior-admin/models"
)

func TestConvert(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Should store admin slots under their dashboard field names", func(t *testing.T) {
		data := toData(models.KindAdmins, models.Record{
			Title:     "asha@studio.in",
			Location:  "Pune",
			Role:      "admin",
			CreatedAt: at,
		})

		assert.Equal(t, "asha@studio.in", data["email"])
		assert.Equal(t, "Pune", data["city"])
		assert.Equal(t, "admin", data["role"])
		assert.Equal(t, at, data["createdAt"])
		assert.Equal(t, []any{}, data["images"])
	})

	t.Run("Should flatten free fields and read them back", func(t *testing.T) {
		rec := models.Record{
			Title:    "Sharma Residence",
			Category: "3BHK",
			Location: "Pune",
			Fields:   map[string]any{"designer": "Asha", "area": "1450 sqft"},
			Images:   []models.ImageRef{{DisplayURL: "https://i.host.test/a.jpg", DeletionToken: "https://del.host.test/a"}},
		}
		data := toData(models.KindProjects, rec)
		assert.Equal(t, "Sharma Residence", data["name"])
		assert.Equal(t, "3BHK", data["propertyType"])
		assert.Equal(t, "Asha", data["designer"])

		got := fromData(models.KindProjects, "p1", data)

		assert.Equal(t, "p1", got.ID)
		assert.Equal(t, models.KindProjects, got.Kind)
		assert.Equal(t, rec.Title, got.Title)
		assert.Equal(t, rec.Category, got.Category)
		assert.Equal(t, rec.Location, got.Location)
		assert.Equal(t, rec.Fields, got.Fields)
		assert.Equal(t, rec.Images, got.Images)
	})

	t.Run("Should read legacy string images without a token", func(t *testing.T) {
		got := fromData(models.KindDesigns, "d1", map[string]any{
			"title":  "Navy Kitchen",
			"images": []any{"/WardrobeDesign/1.jpg", map[string]any{"url": "https://i.host.test/b.jpg", "deleteUrl": "https://del.host.test/b"}},
		})

		assert.Equal(t, []models.ImageRef{
			{DisplayURL: "/WardrobeDesign/1.jpg"},
			{DisplayURL: "https://i.host.test/b.jpg", DeletionToken: "https://del.host.test/b"},
		}, got.Images)
		assert.Nil(t, got.Fields)
	})

	t.Run("Should only touch patched paths", func(t *testing.T) {
		title := "X"
		ups := updates(models.KindUsers, models.Patch{Title: &title, Fields: map[string]any{"mobile": "98"}}, at)

		assert.Len(t, ups, 3)
		assert.Equal(t, "name", ups[0].Path)
		assert.Equal(t, "X", ups[0].Value)
		assert.Equal(t, "updatedAt", ups[2].Path)
	})
}
