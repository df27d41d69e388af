package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"notes-manager/internal/audit"
	"notes-manager/internal/converter"
	"notes-manager/internal/model"
	svc "notes-manager/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Handler реализует HTTP хэндлеры REST API для NotesService
type Handler struct {
	noteService svc.NoteService
	auditLog    audit.Recorder
}

// NewHandler создает новый экземпляр REST хэндлера
func NewHandler(noteService svc.NoteService, auditLog audit.Recorder) *Handler {
	return &Handler{
		noteService: noteService,
		auditLog:    auditLog,
	}
}

// errorResponse тело ответа для всех не-2xx статусов
type errorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

// CreateNote обрабатывает POST /notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input model.CreateNoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, model.NewValidationError(
			"invalid request payload",
			map[string]string{"body": "malformed JSON"},
		))
		return
	}

	note, err := h.noteService.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, converter.ModelToResponse(note))
}

// ListNotes обрабатывает GET /notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, converter.ModelsToResponses(notes))
}

// GetNote обрабатывает GET /notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	note, err := h.noteService.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	// Просмотр отдельной заметки фиксируется на уровне транспорта
	h.auditLog.Record(audit.ActionDetailsViewed, map[string]string{"id": id})

	respondJSON(w, http.StatusOK, converter.ModelToResponse(note))
}

// UpdateNote обрабатывает PUT /notes/{id}
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input model.UpdateNoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, model.NewValidationError(
			"invalid request payload",
			map[string]string{"body": "malformed JSON"},
		))
		return
	}

	note, err := h.noteService.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, converter.ModelToResponse(note))
}

// DeleteNote обрабатывает DELETE /notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.noteService.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLogs обрабатывает GET /logs с опциональным фильтром ?action=
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	var entries []audit.Entry
	if action := r.URL.Query().Get("action"); action != "" {
		entries = h.auditLog.ListByAction(audit.Action(action))
	} else {
		entries = h.auditLog.List()
	}

	respondJSON(w, http.StatusOK, entries)
}

// Reset обрабатывает POST /reset (сброс хранилища и журнала)
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.noteService.Reset(r.Context()); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health обрабатывает GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondError сериализует ошибку сервиса в тело ответа.
// Внутренние ошибки логируются на сервере, клиенту уходит общее сообщение.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var svcErr *model.Error
	if !errors.As(err, &svcErr) {
		svcErr = model.NewInternalError(err)
	}

	message := svcErr.Message
	if svcErr.Code == model.CodeInternal {
		log.Error().Err(err).Msg("internal error while handling request")
		message = "internal server error"
	}

	details := svcErr.Details
	if details == nil {
		details = map[string]string{}
	}

	respondJSON(w, svcErr.HTTPStatus(), errorResponse{
		Error:   message,
		Code:    string(svcErr.Code),
		Details: details,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}
