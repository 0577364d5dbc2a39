package api

import (
	"net/http"
	"strconv"
	"time"

	"saucebottle/internal/apperr"
	"saucebottle/internal/model"
)

// reviewStatuses are the accepted values for a statement's review state.
var reviewStatuses = map[string]bool{
	"pending":  true,
	"approved": true,
	"rejected": true,
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation(
			apperr.Field("invalid", "must be a positive integer", "path", "id"),
		)
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD value.
func parseDate(raw string) (time.Time, bool) {
	ts, err := time.Parse(time.DateOnly, raw)
	return ts, err == nil
}

// pageParams reads skip/limit query parameters. Absent values fall back
// to defaults; malformed or negative values are validation failures.
func pageParams(r *http.Request) (skip, limit int, fields []apperr.FieldError) {
	skip, limit = 0, 0

	if raw := r.URL.Query().Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields = append(fields, apperr.Field("invalid", "must be a non-negative integer", "query", "skip"))
		} else {
			skip = n
		}
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fields = append(fields, apperr.Field("invalid", "must be a positive integer", "query", "limit"))
		} else {
			limit = n
		}
	}

	return skip, limit, fields
}

// politicianRequest is the write schema for politicians.
type politicianRequest struct {
	Name              string `json:"name"`
	Party             string `json:"party"`
	Chamber           string `json:"chamber"`
	PositionTitle     string `json:"position_title"`
	Electorate        string `json:"electorate"`
	State             string `json:"state"`
	DateElected       string `json:"date_elected"`
	SittingStatus     string `json:"sitting_status"`
	IsCabinetMinister bool   `json:"is_cabinet_minister"`
	IsShadowMinister  bool   `json:"is_shadow_minister"`
	PreviousPositions string `json:"previous_positions"`
	WebsiteURL        string `json:"website_url"`
	SocialMediaLinks  string `json:"social_media_links"`
	Tags              string `json:"tags"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// validate collects every field failure instead of stopping at the first.
func (req politicianRequest) validate() []apperr.FieldError {
	var fields []apperr.FieldError

	if req.Name == "" {
		fields = append(fields, apperr.Field("required", "name is required", "body", "name"))
	}
	if len(req.Name) > 255 {
		fields = append(fields, apperr.Field("too_long", "must be at most 255 characters", "body", "name"))
	}
	if req.DateElected != "" {
		if _, ok := parseDate(req.DateElected); !ok {
			fields = append(fields, apperr.Field("invalid", "must be a YYYY-MM-DD date", "body", "date_elected"))
		}
	}

	return fields
}

// toModel maps the request onto a model, preserving the id for updates.
func (req politicianRequest) toModel(id int64) *model.Politician {
	p := &model.Politician{
		ID:                id,
		Name:              req.Name,
		Party:             req.Party,
		Chamber:           req.Chamber,
		PositionTitle:     req.PositionTitle,
		Electorate:        req.Electorate,
		State:             req.State,
		SittingStatus:     req.SittingStatus,
		IsCabinetMinister: req.IsCabinetMinister,
		IsShadowMinister:  req.IsShadowMinister,
		PreviousPositions: req.PreviousPositions,
		WebsiteURL:        req.WebsiteURL,
		SocialMediaLinks:  req.SocialMediaLinks,
		Tags:              req.Tags,
		ProfilePictureURL: req.ProfilePictureURL,
	}
	if ts, ok := parseDate(req.DateElected); ok && req.DateElected != "" {
		p.DateElected = &ts
	}
	return p
}

// statementRequest is the write schema for statements.
type statementRequest struct {
	Content      string `json:"content"`
	PoliticianID int64  `json:"politician_id"`
	DateMade     string `json:"date_made"`
	SourceURL    string `json:"source_url"`
	SourceType   string `json:"source_type"`
	SourceName   string `json:"source_name"`
	ReviewStatus string `json:"review_status"`
}

func (req statementRequest) validate() []apperr.FieldError {
	var fields []apperr.FieldError

	if req.Content == "" {
		fields = append(fields, apperr.Field("required", "content is required", "body", "content"))
	}
	if req.PoliticianID < 1 {
		fields = append(fields, apperr.Field("required", "must reference a politician", "body", "politician_id"))
	}
	if req.DateMade != "" {
		if _, ok := parseDate(req.DateMade); !ok {
			fields = append(fields, apperr.Field("invalid", "must be a YYYY-MM-DD date", "body", "date_made"))
		}
	}
	if req.ReviewStatus != "" && !reviewStatuses[req.ReviewStatus] {
		fields = append(fields, apperr.Field("invalid", "must be one of pending, approved, rejected", "body", "review_status"))
	}

	return fields
}

func (req statementRequest) toModel(id int64) *model.Statement {
	s := &model.Statement{
		ID:           id,
		Content:      req.Content,
		PoliticianID: req.PoliticianID,
		SourceURL:    req.SourceURL,
		SourceType:   req.SourceType,
		SourceName:   req.SourceName,
		ReviewStatus: req.ReviewStatus,
	}
	if ts, ok := parseDate(req.DateMade); ok && req.DateMade != "" {
		s.DateMade = &ts
	}
	return s
}

// bulkStatementRequest carries a batch ingest.
type bulkStatementRequest struct {
	Statements []statementRequest `json:"statements"`
}

// maxBulkStatements caps one ingest request.
const maxBulkStatements = 1000

func (req bulkStatementRequest) validate() []apperr.FieldError {
	var fields []apperr.FieldError

	if len(req.Statements) == 0 {
		fields = append(fields, apperr.Field("required", "at least one statement is required", "body", "statements"))
	}
	if len(req.Statements) > maxBulkStatements {
		fields = append(fields, apperr.Field("too_long", "at most 1000 statements per request", "body", "statements"))
	}

	for i, s := range req.Statements {
		for _, f := range s.validate() {
			// Re-root the child path under its batch index.
			fields = append(fields, apperr.Field(f.Code, f.Message, "body", "statements", strconv.Itoa(i), lastSegment(f.Field)))
		}
	}

	return fields
}

// lastSegment returns the final dotted path segment.
func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
	}
	return path
}
