package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/petermazzocco/interior-admin/internal/auth"
	"github.com/petermazzocco/interior-admin/internal/catalog"
	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/models"
)

type mutationResponse struct {
	Record   *models.Record `json:"record,omitempty"`
	Deleted  string         `json:"deleted,omitempty"`
	Warnings []string       `json:"warnings"`
}

func kindParam(r *http.Request) (models.Kind, error) {
	kind := models.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		return "", models.ValidationError("Unknown collection %q.", kind)
	}
	return kind, nil
}

// ListRecordsHandler returns the records of one collection the caller may
// see. A caller without view rights gets an empty list.
func ListRecordsHandler(w http.ResponseWriter, r *http.Request, sync *catalog.Synchronizer) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id := auth.IdentityFrom(r.Context())
	records, err := sync.ListRecords(r.Context(), id, kind, filterFromQuery(r.URL.Query()))
	if err != nil {
		logger.FromContext(r.Context()).Error("list records", "kind", kind, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func GetRecordHandler(w http.ResponseWriter, r *http.Request, sync *catalog.Synchronizer) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id := auth.IdentityFrom(r.Context())
	rec, err := sync.GetRecord(r.Context(), id, kind, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func AddRecordHandler(w http.ResponseWriter, r *http.Request, sync *catalog.Synchronizer) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := decodeRecord(kind, r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	id := auth.IdentityFrom(r.Context())
	res, err := sync.AddRecord(r.Context(), id, kind, rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mutationResponse{Record: &res.Record, Warnings: warningMessages(res.Warnings)})
}

func UpdateRecordHandler(w http.ResponseWriter, r *http.Request, sync *catalog.Synchronizer) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	patch, err := decodePatch(kind, r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	id := auth.IdentityFrom(r.Context())
	res, err := sync.UpdateRecord(r.Context(), id, kind, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Record: &res.Record, Warnings: warningMessages(res.Warnings)})
}

func DeleteRecordHandler(w http.ResponseWriter, r *http.Request, sync *catalog.Synchronizer) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	recID := chi.URLParam(r, "id")
	id := auth.IdentityFrom(r.Context())
	res, err := sync.DeleteRecord(r.Context(), id, kind, recID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Deleted: recID, Warnings: warningMessages(res.Warnings)})
}
