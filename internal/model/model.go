// Package model defines the catalog's persistent entities.
package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Timestamps maintains created_at/updated_at on insert and update.
type Timestamps struct {
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

var _ bun.BeforeAppendModelHook = (*Timestamps)(nil)

// BeforeAppendModel stamps the timestamps as queries are built.
func (m *Timestamps) BeforeAppendModel(ctx context.Context, query schema.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		now := time.Now()
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now
	case *bun.UpdateQuery:
		m.UpdatedAt = time.Now()
	}
	return nil
}

// Politician is a tracked politician. Names are unique across the catalog.
type Politician struct {
	bun.BaseModel `bun:"table:politicians,alias:p"`

	ID                int64      `bun:"id,pk,autoincrement" json:"id"`
	Name              string     `bun:"name,notnull,unique" json:"name"`
	Party             string     `bun:"party,nullzero" json:"party,omitempty"`
	Chamber           string     `bun:"chamber,nullzero" json:"chamber,omitempty"`
	PositionTitle     string     `bun:"position_title,nullzero" json:"position_title,omitempty"`
	Electorate        string     `bun:"electorate,nullzero" json:"electorate,omitempty"`
	State             string     `bun:"state,nullzero" json:"state,omitempty"`
	DateElected       *time.Time `bun:"date_elected,nullzero" json:"date_elected,omitempty"`
	SittingStatus     string     `bun:"sitting_status,nullzero" json:"sitting_status,omitempty"`
	IsCabinetMinister bool       `bun:"is_cabinet_minister" json:"is_cabinet_minister"`
	IsShadowMinister  bool       `bun:"is_shadow_minister" json:"is_shadow_minister"`
	PreviousPositions string     `bun:"previous_positions,nullzero" json:"previous_positions,omitempty"`
	WebsiteURL        string     `bun:"website_url,nullzero" json:"website_url,omitempty"`
	SocialMediaLinks  string     `bun:"social_media_links,nullzero" json:"social_media_links,omitempty"`
	StatementCount    int        `bun:"statement_count,notnull,default:0" json:"statement_count"`
	Tags              string     `bun:"tags,nullzero" json:"tags,omitempty"`
	ProfilePictureURL string     `bun:"profile_picture_url,nullzero" json:"profile_picture_url,omitempty"`

	Timestamps

	Statements []*Statement `bun:"rel:has-many,join:id=politician_id" json:"-"`
}

// ReviewStatusPending is the initial review state for ingested statements.
const ReviewStatusPending = "pending"

// Statement is a recorded political statement, linked to the politician
// who made it, with room for analysis results attached later.
type Statement struct {
	bun.BaseModel `bun:"table:statements,alias:s"`

	ID                      int64      `bun:"id,pk,autoincrement" json:"id"`
	Content                 string     `bun:"content,notnull" json:"content"`
	DateMade                *time.Time `bun:"date_made,nullzero" json:"date_made,omitempty"`
	PoliticianID            int64      `bun:"politician_id,notnull" json:"politician_id"`
	AISummary               string     `bun:"ai_summary,nullzero" json:"ai_summary,omitempty"`
	AIContradictionAnalysis string     `bun:"ai_contradiction_analysis,nullzero" json:"ai_contradiction_analysis,omitempty"`
	SourceURL               string     `bun:"source_url,nullzero" json:"source_url,omitempty"`
	SourceType              string     `bun:"source_type,nullzero" json:"source_type,omitempty"`
	SourceName              string     `bun:"source_name,nullzero" json:"source_name,omitempty"`
	ReviewStatus            string     `bun:"review_status,notnull,default:'pending'" json:"review_status"`

	Timestamps

	Politician *Politician `bun:"rel:belongs-to,join:politician_id=id" json:"-"`
}
