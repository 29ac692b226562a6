package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/petermazzocco/interior-admin/internal/access"
	"github.com/petermazzocco/interior-admin/internal/blogs"
	"github.com/petermazzocco/interior-admin/internal/catalog"
)

// MountCatalog registers the record and image routes on r. Callers add the
// session middleware themselves.
func MountCatalog(r chi.Router, sync *catalog.Synchronizer, gate *access.Gate, gen *blogs.Generator) {
	r.Get("/me", GetMeHandler)
	r.Route("/{kind}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			ListRecordsHandler(w, r, sync)
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			AddRecordHandler(w, r, sync)
		})
		r.Post("/images", func(w http.ResponseWriter, r *http.Request) {
			StageImagesHandler(w, r, sync)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			GetRecordHandler(w, r, sync)
		})
		r.Patch("/{id}", func(w http.ResponseWriter, r *http.Request) {
			UpdateRecordHandler(w, r, sync)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			DeleteRecordHandler(w, r, sync)
		})
	})
	r.Post("/blogs/generate", func(w http.ResponseWriter, r *http.Request) {
		GenerateBlogHandler(w, r, gate, gen)
	})
}
