package api

import (
	"net/http"
	"strconv"

	"saucebottle/internal/apperr"
	"saucebottle/internal/model"
	"saucebottle/internal/store"
)

// statementListParams reads the statement listing filters.
func statementListParams(r *http.Request) (store.StatementFilter, []apperr.FieldError) {
	skip, limit, fields := pageParams(r)
	filter := store.StatementFilter{Skip: skip, Limit: limit}

	q := r.URL.Query()

	if raw := q.Get("politician_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			fields = append(fields, apperr.Field("invalid", "must be a positive integer", "query", "politician_id"))
		} else {
			filter.PoliticianID = id
		}
	}

	if raw := q.Get("date_from"); raw != "" {
		ts, ok := parseDate(raw)
		if !ok {
			fields = append(fields, apperr.Field("invalid", "must be a YYYY-MM-DD date", "query", "date_from"))
		} else {
			filter.DateFrom = &ts
		}
	}

	if raw := q.Get("date_to"); raw != "" {
		ts, ok := parseDate(raw)
		if !ok {
			fields = append(fields, apperr.Field("invalid", "must be a YYYY-MM-DD date", "query", "date_to"))
		} else {
			filter.DateTo = &ts
		}
	}

	return filter, fields
}

func (h *Handler) listStatements(w http.ResponseWriter, r *http.Request) {
	filter, fields := statementListParams(r)
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

	statements, err := store.ListStatements(r.Context(), session.DB(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, statements)
}

func (h *Handler) getStatement(w http.ResponseWriter, r *http.Request) {
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

	statement, err := store.GetStatement(r.Context(), session.DB(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, statement)
}

func (h *Handler) createStatement(w http.ResponseWriter, r *http.Request) {
	var req statementRequest
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

	statement := req.toModel(0)
	if err := store.CreateStatement(r.Context(), scope.DB(), statement); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := scope.Commit(); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, statement)
}

func (h *Handler) updateStatement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req statementRequest
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

	current, err := store.GetStatement(r.Context(), scope.DB(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	statement := req.toModel(id)
	statement.CreatedAt = current.CreatedAt
	statement.AISummary = current.AISummary
	statement.AIContradictionAnalysis = current.AIContradictionAnalysis

	if err := store.UpdateStatement(r.Context(), scope.DB(), statement); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := scope.Commit(); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, statement)
}

func (h *Handler) deleteStatement(w http.ResponseWriter, r *http.Request) {
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

	if err := store.DeleteStatement(r.Context(), scope.DB(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := scope.Commit(); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusNoContent, nil)
}

// bulkCreateResponse reports the outcome of a batch ingest.
type bulkCreateResponse struct {
	Created int64 `json:"created"`
}

func (h *Handler) bulkCreateStatements(w http.ResponseWriter, r *http.Request) {
	var req bulkStatementRequest
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

	statements := make([]*model.Statement, 0, len(req.Statements))
	for _, s := range req.Statements {
		statements = append(statements, s.toModel(0))
	}

	created, err := store.BulkCreateStatements(r.Context(), scope.DB(), statements)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := scope.Commit(); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, bulkCreateResponse{Created: created})
}
