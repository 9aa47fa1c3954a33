package ch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"boathouse/internal/models"
	"boathouse/internal/storage"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseDB implements storage.Storage on ClickHouse. Mutable entities
// (boats, persons, admins, defect aggregates) live on ReplacingMergeTree
// tables read with FINAL; the audit log and engine hours are append-only.
type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB opens and pings a ClickHouse connection.
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations
// (see migrations/ directory and cmd/migrate).
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	return nil
}

// ClickHouse DateTime cannot hold Go's zero time; unset timestamps are
// stored as the epoch and mapped back on read.
func toCH(t time.Time) time.Time {
	if t.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return t
}

func fromCH(t time.Time) time.Time {
	if t.Unix() == 0 {
		return time.Time{}
	}
	return t
}

const boatColumns = `id, name, is_available, checked_out_to, checked_out_to_name, check_out_reason, checked_out_at, checked_in_at`

func scanBoat(rows interface {
	Scan(dest ...any) error
}) (*models.Boat, error) {
	var boat models.Boat
	var checkedOutAt, checkedInAt time.Time
	if err := rows.Scan(&boat.ID, &boat.Name, &boat.IsAvailable, &boat.CheckedOutTo,
		&boat.CheckedOutToName, &boat.CheckOutReason, &checkedOutAt, &checkedInAt); err != nil {
		return nil, fmt.Errorf("failed to scan boat: %w", err)
	}
	boat.CheckedOutAt = fromCH(checkedOutAt)
	boat.CheckedInAt = fromCH(checkedInAt)
	return &boat, nil
}

// GetBoatByID returns the boat with the given id, or nil when absent.
func (db *ClickHouseDB) GetBoatByID(ctx context.Context, id string) (*models.Boat, error) {
	return db.getBoat(ctx, `SELECT `+boatColumns+` FROM boats FINAL WHERE id = ?`, id)
}

// GetBoatByName returns the boat with the given name, or nil when absent.
func (db *ClickHouseDB) GetBoatByName(ctx context.Context, name string) (*models.Boat, error) {
	return db.getBoat(ctx, `SELECT `+boatColumns+` FROM boats FINAL WHERE name = ?`, name)
}

func (db *ClickHouseDB) getBoat(ctx context.Context, query string, arg any) (*models.Boat, error) {
	rows, err := db.conn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get boat: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanBoat(rows)
}

// ListBoats returns all boats ordered by name.
func (db *ClickHouseDB) ListBoats(ctx context.Context) ([]models.Boat, error) {
	return db.listBoats(ctx, `SELECT `+boatColumns+` FROM boats FINAL ORDER BY name`)
}

// ListAvailableBoats returns the boats available for checkout.
func (db *ClickHouseDB) ListAvailableBoats(ctx context.Context) ([]models.Boat, error) {
	return db.listBoats(ctx, `SELECT `+boatColumns+` FROM boats FINAL WHERE is_available = true ORDER BY name`)
}

// ListCheckedOutBoats returns the boats currently checked out.
func (db *ClickHouseDB) ListCheckedOutBoats(ctx context.Context) ([]models.Boat, error) {
	return db.listBoats(ctx, `SELECT `+boatColumns+` FROM boats FINAL WHERE is_available = false ORDER BY name`)
}

func (db *ClickHouseDB) listBoats(ctx context.Context, query string) ([]models.Boat, error) {
	rows, err := db.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list boats: %w", err)
	}
	defer rows.Close()

	var boats []models.Boat
	for rows.Next() {
		boat, err := scanBoat(rows)
		if err != nil {
			return nil, err
		}
		boats = append(boats, *boat)
	}
	return boats, nil
}

// SaveBoat inserts a new boat version; ReplacingMergeTree keeps the latest.
func (db *ClickHouseDB) SaveBoat(ctx context.Context, boat *models.Boat) error {
	if boat == nil || boat.ID == "" {
		return fmt.Errorf("invalid boat object")
	}
	err := db.conn.Exec(ctx,
		`INSERT INTO boats (`+boatColumns+`, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		boat.ID, boat.Name, boat.IsAvailable, boat.CheckedOutTo, boat.CheckedOutToName,
		boat.CheckOutReason, toCH(boat.CheckedOutAt), toCH(boat.CheckedInAt), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save boat: %w", err)
	}
	return nil
}

const personColumns = `id, first_name, last_name, birth_month, birth_day, birth_year, search_key`

func scanPerson(rows interface {
	Scan(dest ...any) error
}) (*models.Person, error) {
	var p models.Person
	var month, day, year int32
	if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &month, &day, &year, &p.SearchKey); err != nil {
		return nil, fmt.Errorf("failed to scan person: %w", err)
	}
	p.BirthMonth = int(month)
	p.BirthDay = int(day)
	p.BirthYear = int(year)
	return &p, nil
}

// GetPersonByID returns the person with the given id, or nil when absent.
func (db *ClickHouseDB) GetPersonByID(ctx context.Context, id string) (*models.Person, error) {
	rows, err := db.conn.Query(ctx, `SELECT `+personColumns+` FROM persons FINAL WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanPerson(rows)
}

// GetPersonByName returns the person matching "First Last", or nil.
func (db *ClickHouseDB) GetPersonByName(ctx context.Context, fullName string) (*models.Person, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT `+personColumns+` FROM persons FINAL WHERE concat(first_name, ' ', last_name) = ?`, fullName)
	if err != nil {
		return nil, fmt.Errorf("failed to get person by name: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanPerson(rows)
}

// ListPersons returns the roster ordered by last then first name.
func (db *ClickHouseDB) ListPersons(ctx context.Context) ([]models.Person, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT `+personColumns+` FROM persons FINAL ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var persons []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, *p)
	}
	return persons, nil
}

// SavePerson inserts a new person version; ReplacingMergeTree keeps the
// latest.
func (db *ClickHouseDB) SavePerson(ctx context.Context, person *models.Person) error {
	if person == nil || person.ID == "" {
		return fmt.Errorf("invalid person object")
	}
	err := db.conn.Exec(ctx,
		`INSERT INTO persons (`+personColumns+`, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		person.ID, person.FirstName, person.LastName,
		int32(person.BirthMonth), int32(person.BirthDay), int32(person.BirthYear),
		person.SearchKey, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}
	return nil
}

// DeleteAllPersons truncates the roster.
func (db *ClickHouseDB) DeleteAllPersons(ctx context.Context) error {
	if err := db.conn.Exec(ctx, `TRUNCATE TABLE persons`); err != nil {
		return fmt.Errorf("failed to delete all persons: %w", err)
	}
	return nil
}

// FindPersonsBySearchKey matches by the derived search key, then filters by
// year when one was given.
func (db *ClickHouseDB) FindPersonsBySearchKey(ctx context.Context, lastInitial string, birthDay, birthMonth, birthYear int) ([]models.Person, error) {
	key := models.SearchKeyFor(lastInitial, birthDay, birthMonth)

	rows, err := db.conn.Query(ctx,
		`SELECT `+personColumns+` FROM persons FINAL WHERE search_key = ? ORDER BY id`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to find persons: %w", err)
	}
	defer rows.Close()

	var found []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		if birthYear != 0 && p.BirthYear != birthYear {
			continue
		}
		found = append(found, *p)
	}
	return found, nil
}

// GetAdminByEmail returns the admin with the given email, or nil when absent.
func (db *ClickHouseDB) GetAdminByEmail(ctx context.Context, email string) (*models.AdminPerson, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT email_address, first_name, last_name, password_hash FROM admin_persons FINAL WHERE email_address = ?`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	var admin models.AdminPerson
	if err := rows.Scan(&admin.EmailAddress, &admin.FirstName, &admin.LastName, &admin.PasswordHash); err != nil {
		return nil, fmt.Errorf("failed to scan admin: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all admins ordered by email address.
func (db *ClickHouseDB) ListAdmins(ctx context.Context) ([]models.AdminPerson, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT email_address, first_name, last_name, password_hash FROM admin_persons FINAL ORDER BY email_address`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []models.AdminPerson
	for rows.Next() {
		var admin models.AdminPerson
		if err := rows.Scan(&admin.EmailAddress, &admin.FirstName, &admin.LastName, &admin.PasswordHash); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}
	return admins, nil
}

// SaveAdmin inserts a new admin version; ReplacingMergeTree keeps the latest.
func (db *ClickHouseDB) SaveAdmin(ctx context.Context, admin *models.AdminPerson) error {
	if admin == nil || admin.EmailAddress == "" {
		return fmt.Errorf("invalid admin object")
	}
	err := db.conn.Exec(ctx,
		`INSERT INTO admin_persons (email_address, first_name, last_name, password_hash, updated_at) VALUES (?, ?, ?, ?, ?)`,
		admin.EmailAddress, admin.FirstName, admin.LastName, admin.PasswordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save admin: %w", err)
	}
	return nil
}

// DeleteAdmin removes the admin with the given email.
func (db *ClickHouseDB) DeleteAdmin(ctx context.Context, email string) error {
	if err := db.conn.Exec(ctx, `DELETE FROM admin_persons WHERE email_address = ?`, email); err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	return nil
}

// LoadDefectsForBoat returns the boat's open defect aggregate, or nil.
func (db *ClickHouseDB) LoadDefectsForBoat(ctx context.Context, boatID string) (*models.DefectsForBoat, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT boat_id, reported, originally_reported, updated_at FROM defects_for_boats FINAL WHERE boat_id = ?`, boatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load defects: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanDefects(rows)
}

func scanDefects(rows interface {
	Scan(dest ...any) error
}) (*models.DefectsForBoat, error) {
	var defects models.DefectsForBoat
	var reported string
	var originallyReported, updatedAt time.Time
	if err := rows.Scan(&defects.BoatID, &reported, &originallyReported, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan defects: %w", err)
	}
	if err := json.Unmarshal([]byte(reported), &defects.Reported); err != nil {
		return nil, fmt.Errorf("failed to decode defects for boat %s: %w", defects.BoatID, err)
	}
	defects.OriginallyReported = fromCH(originallyReported)
	defects.Timestamp = fromCH(updatedAt)
	return &defects, nil
}

// SaveDefectsForBoat inserts a new aggregate version; ReplacingMergeTree
// keeps the latest.
func (db *ClickHouseDB) SaveDefectsForBoat(ctx context.Context, defects *models.DefectsForBoat) error {
	if defects == nil || defects.BoatID == "" {
		return fmt.Errorf("invalid defects object")
	}
	reported, err := json.Marshal(defects.Reported)
	if err != nil {
		return fmt.Errorf("failed to encode defects for boat %s: %w", defects.BoatID, err)
	}
	err = db.conn.Exec(ctx,
		`INSERT INTO defects_for_boats (boat_id, reported, originally_reported, updated_at) VALUES (?, ?, ?, ?)`,
		defects.BoatID, string(reported), toCH(defects.OriginallyReported), toCH(defects.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to save defects: %w", err)
	}
	return nil
}

// DeleteDefectsForBoat removes the boat's defect aggregate.
func (db *ClickHouseDB) DeleteDefectsForBoat(ctx context.Context, boatID string) error {
	if err := db.conn.Exec(ctx, `DELETE FROM defects_for_boats WHERE boat_id = ?`, boatID); err != nil {
		return fmt.Errorf("failed to delete defects: %w", err)
	}
	return nil
}

// ListDefectsForAllBoats returns every open aggregate ordered by boat id.
func (db *ClickHouseDB) ListDefectsForAllBoats(ctx context.Context) ([]models.DefectsForBoat, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT boat_id, reported, originally_reported, updated_at FROM defects_for_boats FINAL ORDER BY boat_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list defects: %w", err)
	}
	defer rows.Close()

	var all []models.DefectsForBoat
	for rows.Next() {
		defects, err := scanDefects(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, *defects)
	}
	return all, nil
}

// AppendLog stores the entry, rejecting duplicate log keys. ClickHouse has
// no conditional write, so the uniqueness check is a read before the insert;
// the race window between the two is accepted, matching the overall absence
// of cross-entity atomicity.
func (db *ClickHouseDB) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	if entry == nil || entry.LogKey == "" {
		return fmt.Errorf("invalid log entry")
	}

	var count uint64
	row := db.conn.QueryRow(ctx, `SELECT count() FROM rib_logs WHERE log_key = ?`, entry.LogKey)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("failed to check log key: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("log key %s: %w", entry.LogKey, storage.ErrDuplicateLogKey)
	}

	err := db.conn.Exec(ctx,
		`INSERT INTO rib_logs (log_key, action, boat_name, person_name, check_out_date_time, check_in_date_time, check_out_reason, defect, additional_info, engine_hours)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.LogKey, entry.Action, entry.BoatName, entry.PersonName,
		toCH(entry.CheckOutDateTime), toCH(entry.CheckInDateTime),
		entry.CheckOutReason, entry.Defect, entry.AdditionalInfo, entry.EngineHours)
	if err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// ListLogEntries returns all entries sorted by check-out time ascending.
func (db *ClickHouseDB) ListLogEntries(ctx context.Context) ([]models.LogEntry, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT log_key, action, boat_name, person_name, check_out_date_time, check_in_date_time, check_out_reason, defect, additional_info, engine_hours
		 FROM rib_logs ORDER BY check_out_date_time`)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		var checkOut, checkIn time.Time
		if err := rows.Scan(&entry.LogKey, &entry.Action, &entry.BoatName, &entry.PersonName,
			&checkOut, &checkIn, &entry.CheckOutReason, &entry.Defect, &entry.AdditionalInfo,
			&entry.EngineHours); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entry.CheckOutDateTime = fromCH(checkOut)
		entry.CheckInDateTime = fromCH(checkIn)
		entries = append(entries, entry)
	}
	return entries, nil
}

// SaveEngineHours appends an engine-hours record. An empty reason is stored
// as "Unknown".
func (db *ClickHouseDB) SaveEngineHours(ctx context.Context, hours *models.EngineHours) error {
	if hours == nil || hours.BoatID == "" {
		return fmt.Errorf("invalid engine hours object")
	}
	if hours.Reason == "" {
		hours.Reason = "Unknown"
	}
	if hours.Timestamp.IsZero() {
		hours.Timestamp = time.Now()
	}
	err := db.conn.Exec(ctx,
		`INSERT INTO engine_hours (boat_id, hours, reason, timestamp) VALUES (?, ?, ?, ?)`,
		hours.BoatID, hours.Hours, hours.Reason, hours.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to save engine hours: %w", err)
	}
	return nil
}

// GetEngineHoursByBoat returns the boat's engine-hours records, oldest first.
func (db *ClickHouseDB) GetEngineHoursByBoat(ctx context.Context, boatID string) ([]models.EngineHours, error) {
	return db.listEngineHours(ctx,
		`SELECT boat_id, hours, reason, timestamp FROM engine_hours WHERE boat_id = ? ORDER BY timestamp`, boatID)
}

// ListAllEngineHours returns every engine-hours record, oldest first.
func (db *ClickHouseDB) ListAllEngineHours(ctx context.Context) ([]models.EngineHours, error) {
	return db.listEngineHours(ctx,
		`SELECT boat_id, hours, reason, timestamp FROM engine_hours ORDER BY timestamp`)
}

func (db *ClickHouseDB) listEngineHours(ctx context.Context, query string, args ...any) ([]models.EngineHours, error) {
	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list engine hours: %w", err)
	}
	defer rows.Close()

	var records []models.EngineHours
	for rows.Next() {
		var record models.EngineHours
		if err := rows.Scan(&record.BoatID, &record.Hours, &record.Reason, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan engine hours: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Close closes the database connection.
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
