package store

import (
	"context"
	"testing"
	"time"

	"saucebottle/internal/apperr"
	"saucebottle/internal/db"
	"saucebottle/internal/model"
)

// testEngine returns an in-memory engine with the catalog schema applied.
func testEngine(t *testing.T) *db.Engine {
	t.Helper()

	registry := db.NewRegistry()
	t.Cleanup(func() { _ = registry.Close() })

	engine, err := registry.Get(db.Config{URL: "sqlite://:memory:"})
	if err != nil {
		t.Fatalf("failed to open test engine: %v", err)
	}

	if err := Schema(context.Background(), engine); err != nil {
		t.Fatalf("schema bootstrap failed: %v", err)
	}

	return engine
}

func seedPolitician(t *testing.T, engine *db.Engine, name string) *model.Politician {
	t.Helper()

	p := &model.Politician{Name: name, Party: "Independent", Chamber: "House"}
	if err := CreatePolitician(context.Background(), engine, p); err != nil {
		t.Fatalf("failed to seed politician %s: %v", name, err)
	}
	return p
}

func TestPolitician_CreateAndGet(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	created := seedPolitician(t, engine, "Jane Citizen")
	if created.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be stamped")
	}

	got, err := GetPolitician(ctx, engine, created.ID)
	if err != nil {
		t.Fatalf("GetPolitician failed: %v", err)
	}
	if got.Name != "Jane Citizen" {
		t.Errorf("expected name Jane Citizen, got %s", got.Name)
	}
	if got.StatementCount != 0 {
		t.Errorf("expected fresh politician to have 0 statements, got %d", got.StatementCount)
	}
}

func TestPolitician_GetMissing(t *testing.T) {
	engine := testEngine(t)

	_, err := GetPolitician(context.Background(), engine, 404)
	if !apperr.IsKind(err, apperr.KindEntityNotFound) {
		t.Fatalf("expected entity not found, got %v", err)
	}
	if got := apperr.GetKind(err).StatusCode(); got != 404 {
		t.Errorf("expected status 404, got %d", got)
	}
}

func TestPolitician_DuplicateName(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	seedPolitician(t, engine, "Jane Citizen")

	err := CreatePolitician(ctx, engine, &model.Politician{Name: "Jane Citizen"})
	if !apperr.IsKind(err, apperr.KindDuplicateEntity) {
		t.Fatalf("expected duplicate entity, got %v", err)
	}

	wire := apperr.Translate(err)
	if wire.StatusCode != 409 {
		t.Errorf("expected status 409, got %d", wire.StatusCode)
	}

	// The conflicting key survives translation.
	found := false
	for _, d := range wire.Details {
		if d.Message == "Jane Citizen" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected conflicting key in details, got %+v", wire.Details)
	}
}

func TestPolitician_UpdateAndDelete(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	p := seedPolitician(t, engine, "Jane Citizen")

	p.Party = "Greens"
	if err := UpdatePolitician(ctx, engine, p); err != nil {
		t.Fatalf("UpdatePolitician failed: %v", err)
	}

	got, err := GetPolitician(ctx, engine, p.ID)
	if err != nil {
		t.Fatalf("GetPolitician failed: %v", err)
	}
	if got.Party != "Greens" {
		t.Errorf("expected party Greens, got %s", got.Party)
	}

	if err := DeletePolitician(ctx, engine, p.ID); err != nil {
		t.Fatalf("DeletePolitician failed: %v", err)
	}

	_, err = GetPolitician(ctx, engine, p.ID)
	if !apperr.IsKind(err, apperr.KindEntityNotFound) {
		t.Errorf("expected entity not found after delete, got %v", err)
	}
}

func TestPolitician_List(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Alice", "Bob"} {
		seedPolitician(t, engine, name)
	}

	politicians, err := ListPoliticians(ctx, engine, 0, 10)
	if err != nil {
		t.Fatalf("ListPoliticians failed: %v", err)
	}
	if len(politicians) != 3 {
		t.Fatalf("expected 3 politicians, got %d", len(politicians))
	}
	if politicians[0].Name != "Alice" {
		t.Errorf("expected name ordering, got %s first", politicians[0].Name)
	}

	page, err := ListPoliticians(ctx, engine, 1, 1)
	if err != nil {
		t.Fatalf("ListPoliticians failed: %v", err)
	}
	if len(page) != 1 || page[0].Name != "Bob" {
		t.Errorf("expected page [Bob], got %+v", page)
	}

	total, err := CountPoliticians(ctx, engine)
	if err != nil {
		t.Fatalf("CountPoliticians failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected count 3, got %d", total)
	}
}

func TestStatement_CreateMaintainsCount(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	p := seedPolitician(t, engine, "Jane Citizen")

	s := &model.Statement{Content: "We will fix it", PoliticianID: p.ID}
	if err := CreateStatement(ctx, engine, s); err != nil {
		t.Fatalf("CreateStatement failed: %v", err)
	}
	if s.ReviewStatus != model.ReviewStatusPending {
		t.Errorf("expected default review status, got %s", s.ReviewStatus)
	}

	got, err := GetPolitician(ctx, engine, p.ID)
	if err != nil {
		t.Fatalf("GetPolitician failed: %v", err)
	}
	if got.StatementCount != 1 {
		t.Errorf("expected statement count 1, got %d", got.StatementCount)
	}

	if err := DeleteStatement(ctx, engine, s.ID); err != nil {
		t.Fatalf("DeleteStatement failed: %v", err)
	}

	got, err = GetPolitician(ctx, engine, p.ID)
	if err != nil {
		t.Fatalf("GetPolitician failed: %v", err)
	}
	if got.StatementCount != 0 {
		t.Errorf("expected statement count back to 0, got %d", got.StatementCount)
	}
}

func TestStatement_CreateForMissingPolitician(t *testing.T) {
	engine := testEngine(t)

	err := CreateStatement(context.Background(), engine, &model.Statement{
		Content:      "orphan",
		PoliticianID: 999,
	})
	if !apperr.IsKind(err, apperr.KindEntityNotFound) {
		t.Fatalf("expected entity not found, got %v", err)
	}
}

func TestStatement_ListFilters(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	jane := seedPolitician(t, engine, "Jane Citizen")
	john := seedPolitician(t, engine, "John Smith")

	day := func(d int) *time.Time {
		ts := time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}

	for _, s := range []*model.Statement{
		{Content: "one", PoliticianID: jane.ID, DateMade: day(1)},
		{Content: "two", PoliticianID: jane.ID, DateMade: day(10)},
		{Content: "three", PoliticianID: john.ID, DateMade: day(20)},
	} {
		if err := CreateStatement(ctx, engine, s); err != nil {
			t.Fatalf("CreateStatement failed: %v", err)
		}
	}

	all, err := ListStatements(ctx, engine, StatementFilter{})
	if err != nil {
		t.Fatalf("ListStatements failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(all))
	}
	if all[0].Content != "three" {
		t.Errorf("expected newest first, got %s", all[0].Content)
	}

	janes, err := ListStatements(ctx, engine, StatementFilter{PoliticianID: jane.ID})
	if err != nil {
		t.Fatalf("ListStatements failed: %v", err)
	}
	if len(janes) != 2 {
		t.Errorf("expected 2 statements for jane, got %d", len(janes))
	}

	ranged, err := ListStatements(ctx, engine, StatementFilter{DateFrom: day(5), DateTo: day(25)})
	if err != nil {
		t.Fatalf("ListStatements failed: %v", err)
	}
	if len(ranged) != 2 {
		t.Errorf("expected 2 statements in range, got %d", len(ranged))
	}
}

func TestStatement_InvertedDateRange(t *testing.T) {
	engine := testEngine(t)

	from := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err := ListStatements(context.Background(), engine, StatementFilter{
		DateFrom: &from,
		DateTo:   &to,
	})
	if !apperr.IsKind(err, apperr.KindInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	if got := apperr.GetKind(err).StatusCode(); got != 400 {
		t.Errorf("expected status 400, got %d", got)
	}
}

func TestStatement_UpdateMovesCount(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	jane := seedPolitician(t, engine, "Jane Citizen")
	john := seedPolitician(t, engine, "John Smith")

	s := &model.Statement{Content: "moving", PoliticianID: jane.ID}
	if err := CreateStatement(ctx, engine, s); err != nil {
		t.Fatalf("CreateStatement failed: %v", err)
	}

	s.PoliticianID = john.ID
	if err := UpdateStatement(ctx, engine, s); err != nil {
		t.Fatalf("UpdateStatement failed: %v", err)
	}

	gotJane, err := GetPolitician(ctx, engine, jane.ID)
	if err != nil {
		t.Fatalf("GetPolitician failed: %v", err)
	}
	gotJohn, err := GetPolitician(ctx, engine, john.ID)
	if err != nil {
		t.Fatalf("GetPolitician failed: %v", err)
	}

	if gotJane.StatementCount != 0 || gotJohn.StatementCount != 1 {
		t.Errorf("expected counts 0/1 after move, got %d/%d",
			gotJane.StatementCount, gotJohn.StatementCount)
	}
}

func TestStatement_BulkCreate(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	p := seedPolitician(t, engine, "Jane Citizen")

	batch := make([]*model.Statement, 0, 12)
	for i := 0; i < 12; i++ {
		batch = append(batch, &model.Statement{
			Content:      "bulk statement",
			PoliticianID: p.ID,
		})
	}

	total, err := BulkCreateStatements(ctx, engine, batch)
	if err != nil {
		t.Fatalf("BulkCreateStatements failed: %v", err)
	}
	if total != 12 {
		t.Errorf("expected 12 rows inserted, got %d", total)
	}

	got, err := GetPolitician(ctx, engine, p.ID)
	if err != nil {
		t.Fatalf("GetPolitician failed: %v", err)
	}
	if got.StatementCount != 12 {
		t.Errorf("expected statement count 12, got %d", got.StatementCount)
	}
}

func TestStatement_BulkCreateMissingPolitician(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	p := seedPolitician(t, engine, "Jane Citizen")

	_, err := BulkCreateStatements(ctx, engine, []*model.Statement{
		{Content: "fine", PoliticianID: p.ID},
		{Content: "orphan", PoliticianID: 999},
	})
	if !apperr.IsKind(err, apperr.KindEntityNotFound) {
		t.Fatalf("expected entity not found, got %v", err)
	}

	// Verification runs before any insert; nothing was written.
	statements, err := ListStatements(ctx, engine, StatementFilter{})
	if err != nil {
		t.Fatalf("ListStatements failed: %v", err)
	}
	if len(statements) != 0 {
		t.Errorf("expected no statements written, got %d", len(statements))
	}
}

func TestPolitician_DeleteRemovesStatements(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	p := seedPolitician(t, engine, "Jane Citizen")
	if err := CreateStatement(ctx, engine, &model.Statement{Content: "gone", PoliticianID: p.ID}); err != nil {
		t.Fatalf("CreateStatement failed: %v", err)
	}

	if err := DeletePolitician(ctx, engine, p.ID); err != nil {
		t.Fatalf("DeletePolitician failed: %v", err)
	}

	statements, err := ListStatements(ctx, engine, StatementFilter{PoliticianID: p.ID})
	if err != nil {
		t.Fatalf("ListStatements failed: %v", err)
	}
	if len(statements) != 0 {
		t.Errorf("expected statements removed with politician, got %d", len(statements))
	}
}
