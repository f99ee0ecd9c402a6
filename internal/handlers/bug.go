package handlers

import (
	"net/http"

	"github.com/surajorg0/jira-tracker-backend/internal/auth"
	"github.com/surajorg0/jira-tracker-backend/internal/httpx"
	"github.com/surajorg0/jira-tracker-backend/internal/services"
)

type BugHandler struct {
	bugs *services.BugService
}

func NewBugHandler(bugs *services.BugService) *BugHandler {
	return &BugHandler{bugs: bugs}
}

func (h *BugHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	var in services.BugInput
	if !decodeJSON(w, r, &in) {
		return
	}
	bug, err := h.bugs.Create(r.Context(), actor, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bug)
}

func (h *BugHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	bugs, err := h.bugs.List(r.Context(), actor)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bugs)
}

func (h *BugHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bug, err := h.bugs.GetByID(r.Context(), actor, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bug)
}

func (h *BugHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.BugUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	bug, err := h.bugs.Update(r.Context(), actor, id, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bug)
}

func (h *BugHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.bugs.Delete(r.Context(), actor, id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "bug deleted"})
}
