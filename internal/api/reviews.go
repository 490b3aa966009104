package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/starford/revue/internal/cadence"
)

// Watchlist handles GET /api/reviews.
//
//	@Summary		Classify watched and reminder notes
//	@Tags			reviews
//	@Produce		json
//	@Success		200	{object}	WatchlistResponse
//	@Security		BearerAuth
//	@Router			/reviews [get]
func (h *Handler) Watchlist(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Watchlist(r.Context())
	if err != nil {
		writeServiceError(w, "watchlist", "", err)
		return
	}
	writeJSON(w, http.StatusOK, WatchlistResponse{Buckets: b, Counts: b.Counts()})
}

// ReviewStatus handles GET /api/reviews/status/*.
//
//	@Summary		Review schedule of one note
//	@Tags			reviews
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	ReviewEntry
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/status/{path} [get]
func (h *Handler) ReviewStatus(w http.ResponseWriter, r *http.Request) {
	id := notePath(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	entry, err := h.svc.Status(r.Context(), id)
	if err != nil {
		writeServiceError(w, "review status", id, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// MarkReviewed handles POST /api/reviews/mark/*.
//
//	@Summary		Record a review of a note now
//	@Tags			reviews
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	ReviewEntry
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/mark/{path} [post]
func (h *Handler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	id := notePath(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	entry, err := h.svc.MarkReviewed(r.Context(), id)
	if err != nil {
		writeServiceError(w, "mark reviewed", id, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// RemoveReview handles DELETE /api/reviews/mark/*.
//
//	@Summary		Forget a note's last review and snooze
//	@Tags			reviews
//	@Param			path	path	string	true	"Note path"
//	@Success		204		"Review removed"
//	@Security		BearerAuth
//	@Router			/reviews/mark/{path} [delete]
func (h *Handler) RemoveReview(w http.ResponseWriter, r *http.Request) {
	id := notePath(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.RemoveReview(r.Context(), id); err != nil {
		writeServiceError(w, "remove review", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Snooze handles POST /api/reviews/snooze/*.
//
//	@Summary		Push a note's next review forward
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string			true	"Note path"
//	@Param			body	body		SnoozeRequest	true	"Hours to snooze"
//	@Success		200		{object}	ReviewEntry
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/snooze/{path} [post]
func (h *Handler) Snooze(w http.ResponseWriter, r *http.Request) {
	id := notePath(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req SnoozeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	entry, err := h.svc.Snooze(r.Context(), id, req.Hours)
	if err != nil {
		writeServiceError(w, "snooze", id, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// SetCadence handles PUT /api/reviews/cadence/*.
//
//	@Summary		Write a cadence line into a note
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string		true	"Note path"
//	@Param			body	body		CadenceSpec	true	"Cadence"
//	@Success		200		{object}	ReviewEntry
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/cadence/{path} [put]
func (h *Handler) SetCadence(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := notePath(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var spec cadence.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	entry, err := h.svc.SetCadence(r.Context(), id, spec)
	if err != nil {
		writeServiceError(w, "set cadence", id, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Watch handles POST /api/reviews/watch/*.
//
//	@Summary		Start watching a note
//	@Tags			reviews
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	ReviewEntry
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/watch/{path} [post]
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	id := notePath(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	entry, err := h.svc.Watch(r.Context(), id)
	if err != nil {
		writeServiceError(w, "watch", id, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Unwatch handles DELETE /api/reviews/watch/*.
//
//	@Summary		Stop watching a note
//	@Tags			reviews
//	@Param			path	path	string	true	"Note path"
//	@Success		204		"Note unwatched"
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/watch/{path} [delete]
func (h *Handler) Unwatch(w http.ResponseWriter, r *http.Request) {
	id := notePath(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Unwatch(r.Context(), id); err != nil {
		writeServiceError(w, "unwatch", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DescribeCadence handles GET /api/cadence/describe.
//
//	@Summary		Explain a cadence line
//	@Tags			cadence
//	@Produce		json
//	@Param			line	query		string	true	"Cadence line or key=value list"
//	@Success		200		{object}	CadenceDescription
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cadence/describe [get]
func (h *Handler) DescribeCadence(w http.ResponseWriter, r *http.Request) {
	line := strings.TrimSpace(r.URL.Query().Get("line"))
	if line == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'line' is required"))
		return
	}
	writeJSON(w, http.StatusOK, cadence.Describe(line, h.svc.Now()))
}
