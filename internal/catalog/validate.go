package catalog

import (
	"strings"

	"github.com/petermazzocco/interior-admin/models"
)

func normalizeRecord(rec models.Record) models.Record {
	rec = rec.Clone()
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Category = strings.TrimSpace(rec.Category)
	rec.Location = strings.TrimSpace(rec.Location)
	rec.Role = strings.TrimSpace(rec.Role)
	return rec
}

func validateRecord(kind models.Kind, rec models.Record) error {
	if !kind.Valid() {
		return models.ValidationError("Unknown collection %q.", kind)
	}
	if rec.Title == "" {
		return models.ValidationError("A title is required.")
	}
	if kind == models.KindDesigns && !models.IsDesignCategory(rec.Category) {
		return models.ValidationError("Choose a valid design category.")
	}
	return validateImages(kind, rec.Images)
}

func validatePatch(kind models.Kind, id string, p models.Patch) error {
	if !kind.Valid() {
		return models.ValidationError("Unknown collection %q.", kind)
	}
	if strings.TrimSpace(id) == "" {
		return models.ValidationError("A record id is required.")
	}
	if p.Empty() {
		return models.ValidationError("Nothing to update.")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return models.ValidationError("A title is required.")
	}
	if kind == models.KindDesigns && p.Category != nil && !models.IsDesignCategory(*p.Category) {
		return models.ValidationError("Choose a valid design category.")
	}
	if p.Images != nil {
		return validateImages(kind, *p.Images)
	}
	return nil
}

func validateImages(kind models.Kind, images []models.ImageRef) error {
	policy := models.PolicyFor(kind)
	if len(images) > policy.MaxImages {
		if policy.MaxImages == 0 {
			return models.ValidationError("%s records do not take images.", kind)
		}
		return models.ValidationError("You can attach at most %d images.", policy.MaxImages)
	}
	if len(images) < policy.MinImages {
		return models.ValidationError("At least %d image is required.", policy.MinImages)
	}
	for _, img := range images {
		if strings.TrimSpace(img.DisplayURL) == "" {
			return models.ValidationError("Every image needs a URL.")
		}
	}
	return nil
}
