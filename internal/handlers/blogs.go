package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/petermazzocco/interior-admin/internal/access"
	"github.com/petermazzocco/interior-admin/internal/auth"
	"github.com/petermazzocco/interior-admin/internal/blogs"
	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/models"
)

// GenerateBlogHandler drafts a post through the blog generator. The draft is
// returned to the caller and not stored.
func GenerateBlogHandler(w http.ResponseWriter, r *http.Request, gate *access.Gate, gen *blogs.Generator) {
	id := auth.IdentityFrom(r.Context())
	if err := gate.Authorize(id, access.OpCreate, models.KindBlogs).Err(); err != nil {
		writeError(w, err)
		return
	}

	var req blogs.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ValidationError("The request body is not valid JSON."))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, validationMessage(err))
		return
	}

	draft, err := gen.Generate(r.Context(), req)
	if err != nil {
		logger.FromContext(r.Context()).Error("generate blog", "topic", req.Topic, "error", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(draft)
}
