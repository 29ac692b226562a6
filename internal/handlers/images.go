package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/petermazzocco/interior-admin/internal/auth"
	"github.com/petermazzocco/interior-admin/internal/catalog"
	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/models"
)

const maxFormMemory = 32 << 20

// StageImagesHandler uploads the files of the "images" form field to the
// asset host and returns their references. The "attached" field carries how
// many images the draft record already holds.
func StageImagesHandler(w http.ResponseWriter, r *http.Request, sync *catalog.Synchronizer) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	policy := models.PolicyFor(kind)
	r.Body = http.MaxBytesReader(w, r.Body, int64(policy.MaxImages+1)*models.MaxImageBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, models.ValidationError("Could not read the uploaded files."))
		return
	}
	defer r.MultipartForm.RemoveAll()

	attached := 0
	if v := r.FormValue("attached"); v != "" {
		attached, err = strconv.Atoi(v)
		if err != nil || attached < 0 {
			writeError(w, models.ValidationError("attached must be a non-negative number."))
			return
		}
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, models.ValidationError("Please choose at least one image."))
		return
	}
	uploads := make([]models.Upload, 0, len(files))
	for _, header := range files {
		u, err := readUpload(header)
		if err != nil {
			logger.FromContext(r.Context()).Warn("read upload", "file", header.Filename, "error", err)
			writeError(w, models.ValidationError("Could not read %s.", header.Filename))
			return
		}
		uploads = append(uploads, u)
	}

	id := auth.IdentityFrom(r.Context())
	refs, err := sync.StageImages(r.Context(), id, kind, attached, uploads)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Images uploaded successfully",
		"images":  refs,
	})
}

// readUpload reads at most one byte past the size ceiling so that the
// synchronizer can still reject an oversized file by its length.
func readUpload(header *multipart.FileHeader) (models.Upload, error) {
	file, err := header.Open()
	if err != nil {
		return models.Upload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, models.MaxImageBytes+1))
	if err != nil {
		return models.Upload{}, err
	}
	return models.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
