package stubs

import (
	"context"
	"errors"
	"testing"
	"time"

	"boathouse/internal/models"
	"boathouse/internal/storage"
)

func newInitializedMock(t *testing.T) *MockDB {
	t.Helper()
	db := NewMockDB()
	if err := db.Initialize(context.Background()); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	return db
}

func TestMockDB_SeedsFleet(t *testing.T) {
	db := newInitializedMock(t)
	ctx := context.Background()

	boats, err := db.ListBoats(ctx)
	if err != nil {
		t.Fatalf("ListBoats failed: %v", err)
	}
	if len(boats) != 5 {
		t.Fatalf("Expected 5 seeded boats, got %d", len(boats))
	}
	// Sorted by name.
	if boats[0].Name != "Blue Rib" || boats[4].Name != "Yellow Rib" {
		t.Errorf("Unexpected boat order: %s .. %s", boats[0].Name, boats[4].Name)
	}

	// Re-initializing must not wipe state.
	boats[0].IsAvailable = false
	if err := db.SaveBoat(ctx, &boats[0]); err != nil {
		t.Fatalf("SaveBoat failed: %v", err)
	}
	if err := db.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	boat, _ := db.GetBoatByID(ctx, boats[0].ID)
	if boat.IsAvailable {
		t.Error("Expected re-initialize to preserve existing boat state")
	}
}

func TestMockDB_GetAbsentReturnsNil(t *testing.T) {
	db := newInitializedMock(t)
	ctx := context.Background()

	boat, err := db.GetBoatByID(ctx, "missing")
	if err != nil || boat != nil {
		t.Errorf("Expected (nil, nil), got (%v, %v)", boat, err)
	}
	person, err := db.GetPersonByID(ctx, "missing")
	if err != nil || person != nil {
		t.Errorf("Expected (nil, nil), got (%v, %v)", person, err)
	}
	admin, err := db.GetAdminByEmail(ctx, "nobody@example.com")
	if err != nil || admin != nil {
		t.Errorf("Expected (nil, nil), got (%v, %v)", admin, err)
	}
	defects, err := db.LoadDefectsForBoat(ctx, "1")
	if err != nil || defects != nil {
		t.Errorf("Expected (nil, nil), got (%v, %v)", defects, err)
	}
}

func TestMockDB_AppendLogRejectsDuplicateKey(t *testing.T) {
	db := newInitializedMock(t)
	ctx := context.Background()

	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	entry := &models.LogEntry{
		Action:           models.ActionCheckOut,
		BoatName:         "Blue Rib",
		CheckOutDateTime: at,
	}
	entry.EnsureKey(at)

	if err := db.AppendLog(ctx, entry); err != nil {
		t.Fatalf("AppendLog failed: %v", err)
	}

	dup := &models.LogEntry{LogKey: entry.LogKey, Action: models.ActionCheckIn, BoatName: "Blue Rib"}
	err := db.AppendLog(ctx, dup)
	if !errors.Is(err, storage.ErrDuplicateLogKey) {
		t.Fatalf("Expected ErrDuplicateLogKey, got %v", err)
	}

	entries, _ := db.ListLogEntries(ctx)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Action != models.ActionCheckOut {
		t.Error("Expected original entry preserved")
	}
}

func TestMockDB_ListLogEntriesSorted(t *testing.T) {
	db := newInitializedMock(t)
	ctx := context.Background()

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"Yellow Rib", "Blue Rib", "Grey Rib"} {
		entry := &models.LogEntry{
			Action:           models.ActionCheckOut,
			BoatName:         name,
			CheckOutDateTime: base.Add(time.Duration(2-i) * time.Hour),
		}
		entry.EnsureKey(entry.CheckOutDateTime)
		if err := db.AppendLog(ctx, entry); err != nil {
			t.Fatalf("AppendLog failed: %v", err)
		}
	}

	entries, err := db.ListLogEntries(ctx)
	if err != nil {
		t.Fatalf("ListLogEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CheckOutDateTime.Before(entries[i-1].CheckOutDateTime) {
			t.Fatalf("Entries not sorted by check-out time: %v", entries)
		}
	}
}

func TestMockDB_FindPersonsBySearchKey(t *testing.T) {
	db := newInitializedMock(t)
	ctx := context.Background()

	persons := []*models.Person{
		models.NewPerson("p1", "Jane", "Smith", 4, 12, 1990),
		models.NewPerson("p2", "John", "Stevens", 4, 12, 1985),
		models.NewPerson("p3", "Ann", "Brown", 4, 12, 1990),
	}
	for _, p := range persons {
		if err := db.SavePerson(ctx, p); err != nil {
			t.Fatalf("SavePerson failed: %v", err)
		}
	}

	// Year 0 matches any year with the same initial and birth date.
	found, err := db.FindPersonsBySearchKey(ctx, "S", 12, 4, 0)
	if err != nil {
		t.Fatalf("FindPersonsBySearchKey failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(found))
	}

	found, err = db.FindPersonsBySearchKey(ctx, "s", 12, 4, 1990)
	if err != nil {
		t.Fatalf("FindPersonsBySearchKey failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != "p1" {
		t.Fatalf("Expected only p1, got %+v", found)
	}

	found, err = db.FindPersonsBySearchKey(ctx, "z", 12, 4, 0)
	if err != nil {
		t.Fatalf("FindPersonsBySearchKey failed: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("Expected no matches, got %d", len(found))
	}
}

func TestMockDB_DefectsRoundTrip(t *testing.T) {
	db := newInitializedMock(t)
	ctx := context.Background()

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	defects := &models.DefectsForBoat{
		BoatID: "1",
		Reported: []models.ReportedDefect{
			models.NewReportedDefect(models.DefectType{ID: 1, Name: "Engine failure"}, "won't start", now),
		},
		OriginallyReported: now,
		Timestamp:          now,
	}
	if err := db.SaveDefectsForBoat(ctx, defects); err != nil {
		t.Fatalf("SaveDefectsForBoat failed: %v", err)
	}

	loaded, err := db.LoadDefectsForBoat(ctx, "1")
	if err != nil {
		t.Fatalf("LoadDefectsForBoat failed: %v", err)
	}
	if loaded == nil || len(loaded.Reported) != 1 {
		t.Fatalf("Expected 1 defect, got %+v", loaded)
	}
	if loaded.Reported[0].AdditionalInfo != "won't start" {
		t.Errorf("Unexpected info %q", loaded.Reported[0].AdditionalInfo)
	}

	all, err := db.ListDefectsForAllBoats(ctx)
	if err != nil {
		t.Fatalf("ListDefectsForAllBoats failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 aggregate, got %d", len(all))
	}

	if err := db.DeleteDefectsForBoat(ctx, "1"); err != nil {
		t.Fatalf("DeleteDefectsForBoat failed: %v", err)
	}
	loaded, _ = db.LoadDefectsForBoat(ctx, "1")
	if loaded != nil {
		t.Errorf("Expected aggregate deleted, got %+v", loaded)
	}
}

func TestMockDB_SaveEngineHoursDefaults(t *testing.T) {
	db := newInitializedMock(t)
	ctx := context.Background()

	if err := db.SaveEngineHours(ctx, &models.EngineHours{BoatID: "1", Hours: 2}); err != nil {
		t.Fatalf("SaveEngineHours failed: %v", err)
	}

	records, err := db.GetEngineHoursByBoat(ctx, "1")
	if err != nil {
		t.Fatalf("GetEngineHoursByBoat failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Reason != "Unknown" {
		t.Errorf("Expected default reason Unknown, got %q", records[0].Reason)
	}
	if records[0].Timestamp.IsZero() {
		t.Error("Expected timestamp defaulted")
	}
}

func TestMockDB_DeleteAllPersons(t *testing.T) {
	db := newInitializedMock(t)
	ctx := context.Background()

	if err := db.SavePerson(ctx, models.NewPerson("p1", "Jane", "Smith", 4, 12, 1990)); err != nil {
		t.Fatalf("SavePerson failed: %v", err)
	}
	if err := db.DeleteAllPersons(ctx); err != nil {
		t.Fatalf("DeleteAllPersons failed: %v", err)
	}
	persons, _ := db.ListPersons(ctx)
	if len(persons) != 0 {
		t.Errorf("Expected no persons, got %d", len(persons))
	}
}
