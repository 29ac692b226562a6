package firestore

import (
	"maps"
	"time"

	"github.com/petermazzocco/interior-admin/models"
)

// slotFields names the document fields each kind uses for the shared
// record slots, so existing dashboard documents keep their shape.
type slotFields struct {
	title    string
	category string
	location string
}

var slots = map[models.Kind]slotFields{
	models.KindDesigns:  {title: "title", category: "category", location: "location"},
	models.KindProjects: {title: "name", category: "propertyType", location: "location"},
	models.KindAdmins:   {title: "email", category: "category", location: "city"},
	models.KindPartners: {title: "email", category: "category", location: "city"},
	models.KindBlogs:    {title: "title", category: "category", location: "location"},
	models.KindUsers:    {title: "name", category: "propertyType", location: "location"},
}

const (
	fieldRole      = "role"
	fieldImages    = "images"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

func slotsFor(kind models.Kind) slotFields {
	if s, ok := slots[kind]; ok {
		return s
	}
	return slotFields{title: "title", category: "category", location: "location"}
}

func toData(kind models.Kind, rec models.Record) map[string]any {
	s := slotsFor(kind)
	data := make(map[string]any, len(rec.Fields)+7)
	maps.Copy(data, rec.Fields)
	data[s.title] = rec.Title
	data[s.category] = rec.Category
	data[s.location] = rec.Location
	data[fieldRole] = rec.Role
	data[fieldImages] = imagesToData(rec.Images)
	data[fieldCreatedAt] = rec.CreatedAt
	data[fieldUpdatedAt] = rec.UpdatedAt
	return data
}

func imagesToData(images []models.ImageRef) []any {
	out := make([]any, 0, len(images))
	for _, img := range images {
		out = append(out, map[string]any{"url": img.DisplayURL, "deleteUrl": img.DeletionToken})
	}
	return out
}

func fromData(kind models.Kind, id string, data map[string]any) models.Record {
	s := slotsFor(kind)
	rest := maps.Clone(data)
	if rest == nil {
		rest = map[string]any{}
	}
	take := func(key string) any {
		v := rest[key]
		delete(rest, key)
		return v
	}

	rec := models.Record{
		ID:        id,
		Kind:      kind,
		Title:     str(take(s.title)),
		Category:  str(take(s.category)),
		Location:  str(take(s.location)),
		Role:      str(take(fieldRole)),
		Images:    imagesFromData(take(fieldImages)),
		CreatedAt: timestamp(take(fieldCreatedAt)),
		UpdatedAt: timestamp(take(fieldUpdatedAt)),
	}
	if len(rest) > 0 {
		rec.Fields = rest
	}
	return rec.Clone()
}

// imagesFromData accepts {url, deleteUrl} maps and the older plain URL
// strings, which carry no deletion token.
func imagesFromData(v any) []models.ImageRef {
	list, _ := v.([]any)
	out := make([]models.ImageRef, 0, len(list))
	for _, item := range list {
		switch img := item.(type) {
		case string:
			out = append(out, models.ImageRef{DisplayURL: img})
		case map[string]any:
			out = append(out, models.ImageRef{DisplayURL: str(img["url"]), DeletionToken: str(img["deleteUrl"])})
		}
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func timestamp(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}
