package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/codesense/internal/auth"
	"github.com/sakif/codesense/internal/repository"
	"github.com/sakif/codesense/internal/service"
)

// NoteHandler manages CRUD operations for a user's notes.
//
// Handlers only translate HTTP: they pull the userID the auth middleware
// stored, decode the body and hand off to NoteService, which owns
// validation and ownership checks.
type NoteHandler struct {
	svc    *service.NoteService
	logger *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{svc: svc, logger: logger}
}

// HandleList returns the user's notes, pinned first.
//
// HTTP: GET /api/notes?folder=&tag=&search=&limit=&offset=
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q := r.URL.Query()

	notes, err := h.svc.List(r.Context(), userID, repository.NoteFilter{
		ListOptions: repository.ListOptions{
			Limit:  queryInt(q.Get("limit"), 0),
			Offset: queryInt(q.Get("offset"), 0),
		},
		Folder: q.Get("folder"),
		Tag:    q.Get("tag"),
		Search: q.Get("search"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes, "count": len(notes)})
}

// HandleGet returns a single note.
//
// HTTP: GET /api/notes/{id}
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	note, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// HandleCreate saves a new note.
//
// HTTP: POST /api/notes
// REQUEST BODY: {"title": "...", "content": "...", "tags": ["dp"], "folder": "algorithms"}
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in service.NoteInput
	if err := decodeJSON(r, &in); err != nil {
		h.logger.Warn("invalid note JSON", slog.String("error", err.Error()))
		badRequest(w, "Invalid JSON body")
		return
	}

	note, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// HandleUpdate changes the fields present in the body.
//
// HTTP: PUT /api/notes/{id}
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in service.NoteInput
	if err := decodeJSON(r, &in); err != nil {
		h.logger.Warn("invalid note JSON", slog.String("error", err.Error()))
		badRequest(w, "Invalid JSON body")
		return
	}

	note, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// HandleDelete removes a note.
//
// HTTP: DELETE /api/notes/{id}
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Note deleted successfully"})
}

// HandleFolders lists the user's folder names.
//
// HTTP: GET /api/notes/folders
func (h *NoteHandler) HandleFolders(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	folders, err := h.svc.Folders(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// HandleTags lists the user's tags.
//
// HTTP: GET /api/notes/tags
func (h *NoteHandler) HandleTags(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	tags, err := h.svc.Tags(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}
