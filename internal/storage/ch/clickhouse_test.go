package ch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"boathouse/internal/models"
	"boathouse/internal/storage"
)

// runMigrations manually creates the schema
func runMigrations(ctx context.Context, db *ClickHouseDB) error {
	tables := []string{"boats", "persons", "admin_persons", "defects_for_boats", "rib_logs", "engine_hours"}
	for _, table := range tables {
		_ = db.conn.Exec(ctx, "DROP TABLE IF EXISTS "+table)
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS boats (
			id String, name String, is_available Bool,
			checked_out_to String, checked_out_to_name String, check_out_reason String,
			checked_out_at DateTime, checked_in_at DateTime, updated_at DateTime
		) ENGINE = ReplacingMergeTree(updated_at) ORDER BY id`,
		`CREATE TABLE IF NOT EXISTS persons (
			id String, first_name String, last_name String,
			birth_month Int32, birth_day Int32, birth_year Int32,
			search_key String, updated_at DateTime
		) ENGINE = ReplacingMergeTree(updated_at) ORDER BY id`,
		`CREATE TABLE IF NOT EXISTS admin_persons (
			email_address String, first_name String, last_name String,
			password_hash String, updated_at DateTime
		) ENGINE = ReplacingMergeTree(updated_at) ORDER BY email_address`,
		`CREATE TABLE IF NOT EXISTS defects_for_boats (
			boat_id String, reported String,
			originally_reported DateTime, updated_at DateTime
		) ENGINE = ReplacingMergeTree(updated_at) ORDER BY boat_id`,
		`CREATE TABLE IF NOT EXISTS rib_logs (
			log_key String, action String, boat_name String, person_name String,
			check_out_date_time DateTime, check_in_date_time DateTime,
			check_out_reason String, defect String, additional_info String,
			engine_hours Float64
		) ENGINE = MergeTree() ORDER BY log_key`,
		`CREATE TABLE IF NOT EXISTS engine_hours (
			boat_id String, hours Float64, reason String, timestamp DateTime
		) ENGINE = MergeTree() ORDER BY (boat_id, timestamp)`,
	}
	for _, stmt := range ddl {
		if err := db.conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// setupTestDB creates a test ClickHouse instance using testcontainers
func setupTestDB(t *testing.T) (*ClickHouseDB, func()) {
	ctx := context.Background()

	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword(""),
		clickhouseTC.WithDatabase("default"),
	)
	require.NoError(t, err, "Failed to start ClickHouse container")

	host, err := clickhouseContainer.Host(ctx)
	require.NoError(t, err)

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	db, err := NewClickHouseDB(host, port.Int(), "default", "default", "", false)
	require.NoError(t, err, "Failed to connect to ClickHouse")

	err = runMigrations(ctx, db)
	require.NoError(t, err, "Failed to run migrations")

	cleanup := func() {
		db.Close()
		clickhouseContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestClickHouseDB_BoatLifecycle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	boat := &models.Boat{ID: "1", Name: "Blue Rib", IsAvailable: true}
	require.NoError(t, db.SaveBoat(ctx, boat))

	loaded, err := db.GetBoatByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Blue Rib", loaded.Name)
	assert.True(t, loaded.IsAvailable)
	assert.True(t, loaded.CheckedOutAt.IsZero(), "unset timestamp should read back as zero")

	// Saving again replaces the row rather than duplicating it.
	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	loaded.MarkCheckedOut(models.NewPerson("p1", "Jane", "Smith", 4, 12, 1990), "Fuel", at)
	require.NoError(t, db.SaveBoat(ctx, loaded))

	boats, err := db.ListBoats(ctx)
	require.NoError(t, err)
	require.Len(t, boats, 1)
	assert.False(t, boats[0].IsAvailable)
	assert.Equal(t, "Jane Smith", boats[0].CheckedOutToName)
	assert.Equal(t, at, boats[0].CheckedOutAt.UTC())

	available, err := db.ListAvailableBoats(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)

	checkedOut, err := db.ListCheckedOutBoats(ctx)
	require.NoError(t, err)
	require.Len(t, checkedOut, 1)

	missing, err := db.GetBoatByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClickHouseDB_Persons(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, db.SavePerson(ctx, models.NewPerson("p1", "Jane", "Smith", 4, 12, 1990)))
	require.NoError(t, db.SavePerson(ctx, models.NewPerson("p2", "John", "Stevens", 4, 12, 1985)))

	person, err := db.GetPersonByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, "s-12-4", person.SearchKey)

	byName, err := db.GetPersonByName(ctx, "John Stevens")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "p2", byName.ID)

	found, err := db.FindPersonsBySearchKey(ctx, "S", 12, 4, 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = db.FindPersonsBySearchKey(ctx, "S", 12, 4, 1985)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p2", found[0].ID)

	require.NoError(t, db.DeleteAllPersons(ctx))
	persons, err := db.ListPersons(ctx)
	require.NoError(t, err)
	assert.Empty(t, persons)
}

func TestClickHouseDB_Admins(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	admin := &models.AdminPerson{EmailAddress: "admin@example.com", FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, admin.SetPassword("secret"))
	require.NoError(t, db.SaveAdmin(ctx, admin))

	loaded, err := db.GetAdminByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	valid, err := loaded.ValidatePassword("secret")
	require.NoError(t, err)
	assert.True(t, valid, "password should survive the round trip")

	require.NoError(t, db.DeleteAdmin(ctx, "admin@example.com"))
	loaded, err = db.GetAdminByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestClickHouseDB_DefectsRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

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
	require.NoError(t, db.SaveDefectsForBoat(ctx, defects))

	loaded, err := db.LoadDefectsForBoat(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Reported, 1)
	assert.Equal(t, "won't start", loaded.Reported[0].AdditionalInfo)
	assert.Equal(t, defects.Reported[0].DefectID, loaded.Reported[0].DefectID)

	all, err := db.ListDefectsForAllBoats(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, db.DeleteDefectsForBoat(ctx, "1"))
	loaded, err = db.LoadDefectsForBoat(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestClickHouseDB_AppendLogRejectsDuplicates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	at := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	entry := &models.LogEntry{
		Action:           models.ActionCheckOut,
		BoatName:         "Blue Rib",
		PersonName:       "Jane Smith",
		CheckOutDateTime: at,
		CheckOutReason:   "Fuel",
	}
	entry.EnsureKey(at)
	require.NoError(t, db.AppendLog(ctx, entry))

	dup := &models.LogEntry{LogKey: entry.LogKey, Action: models.ActionCheckIn, BoatName: "Blue Rib"}
	err := db.AppendLog(ctx, dup)
	require.ErrorIs(t, err, storage.ErrDuplicateLogKey)

	entries, err := db.ListLogEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionCheckOut, entries[0].Action)
	assert.Equal(t, at, entries[0].CheckOutDateTime.UTC())
	assert.True(t, entries[0].CheckInDateTime.IsZero())
}

func TestClickHouseDB_EngineHours(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.SaveEngineHours(ctx, &models.EngineHours{
		BoatID: "1", Hours: 2.5, Reason: "Maintenance", Timestamp: base,
	}))
	require.NoError(t, db.SaveEngineHours(ctx, &models.EngineHours{
		BoatID: "1", Hours: 1, Timestamp: base.Add(time.Hour),
	}))

	records, err := db.GetEngineHoursByBoat(ctx, "1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2.5, records[0].Hours)
	assert.Equal(t, "Unknown", records[1].Reason, "empty reason should default")

	all, err := db.ListAllEngineHours(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
