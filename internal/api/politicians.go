package api

import (
	"net/http"

	"saucebottle/internal/apperr"
	"saucebottle/internal/store"
)

func (h *Handler) listPoliticians(w http.ResponseWriter, r *http.Request) {
	skip, limit, fields := pageParams(r)
	if len(fields) > 0 {
		h.writeError(w, r, apperr.Validation(fields...))
		return
	}

	session, err := h.factory.Open(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer session.Close()

	politicians, err := store.ListPoliticians(r.Context(), session.DB(), skip, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, politicians)
}

func (h *Handler) getPolitician(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	session, err := h.factory.Open(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer session.Close()

	politician, err := store.GetPolitician(r.Context(), session.DB(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, politician)
}

func (h *Handler) createPolitician(w http.ResponseWriter, r *http.Request) {
	var req politicianRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		h.writeError(w, r, apperr.Validation(fields...))
		return
	}

	session, scope, err := h.factory.OpenWithScope(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer session.Close()

	politician := req.toModel(0)
	if err := store.CreatePolitician(r.Context(), scope.DB(), politician); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := scope.Commit(); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, politician)
}

func (h *Handler) updatePolitician(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req politicianRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		h.writeError(w, r, apperr.Validation(fields...))
		return
	}

	session, scope, err := h.factory.OpenWithScope(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer session.Close()

	// Preserve the denormalized counter and creation time across the write.
	current, err := store.GetPolitician(r.Context(), scope.DB(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	politician := req.toModel(id)
	politician.StatementCount = current.StatementCount
	politician.CreatedAt = current.CreatedAt

	if err := store.UpdatePolitician(r.Context(), scope.DB(), politician); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := scope.Commit(); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, politician)
}

func (h *Handler) deletePolitician(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	session, scope, err := h.factory.OpenWithScope(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer session.Close()

	if err := store.DeletePolitician(r.Context(), scope.DB(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := scope.Commit(); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusNoContent, nil)
}
