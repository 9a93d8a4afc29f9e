package drive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Folders resolves folder paths for the listing endpoint.
type Folders interface {
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

type Handler struct {
	source        Source
	folders       Folders
	importer      *Importer
	defaultFolder string
}

func NewHandler(source Source, folders Folders, importer *Importer, defaultFolder string) *Handler {
	return &Handler{source: source, folders: folders, importer: importer, defaultFolder: defaultFolder}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/import", h.ImportFile).Methods(http.MethodPost)
	router.HandleFunc("/api/drive/import-folder", h.ImportFolder).Methods(http.MethodPost)
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := h.folder(query.Get("folderId"))

	if path := query.Get("path"); path != "" && h.folders != nil {
		id, err := h.folders.FindFolderByPath(r.Context(), path)
		if err != nil {
			writeError(w, err)
			return
		}
		folderID = id
	}

	files, err := h.source.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if files == nil {
		files = []*File{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) ImportFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "fileId parameter is required"})
		return
	}

	report, err := h.importer.ImportFile(r.Context(), fileID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) ImportFolder(w http.ResponseWriter, r *http.Request) {
	folderID := h.folder(r.URL.Query().Get("folderId"))
	if folderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "folderId parameter is required"})
		return
	}

	reports, err := h.importer.ImportFolder(r.Context(), folderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folder_id": folderID, "files": reports})
}

func (h *Handler) folder(requested string) string {
	if requested != "" {
		return requested
	}
	return h.defaultFolder
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode drive response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnsupported), errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Drive request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
