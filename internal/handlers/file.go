package handlers

import (
	"net/http"
	"strconv"

	"github.com/surajorg0/jira-tracker-backend/internal/auth"
	"github.com/surajorg0/jira-tracker-backend/internal/httpx"
	"github.com/surajorg0/jira-tracker-backend/internal/services"
)

// maxAttachmentBytes caps attachment uploads.
const maxAttachmentBytes = 10 << 20

type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload serves POST /files/upload/{type}/{id} with a multipart "file" part.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	refType := r.PathValue("type")
	refID, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || refID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBytes)
	if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "file_too_large", nil)
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_file", nil)
		return
	}
	defer part.Close()

	file, err := h.files.Upload(r.Context(), actor, refType, uint(refID), header.Filename, part)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, file)
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	file, err := h.files.GetByID(r.Context(), actor, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, file)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.files.Delete(r.Context(), actor, id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}
