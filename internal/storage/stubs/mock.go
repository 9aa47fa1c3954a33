package stubs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"boathouse/internal/models"
	"boathouse/internal/storage"
)

// MockDB is an in-memory implementation of the Storage interface for tests
// and local runs. Records are held in the generic item shape, mirroring how
// the external key-value store persists them.
type MockDB struct {
	mu      sync.RWMutex
	boats   map[string]models.Item // keyed by boat id
	persons map[string]models.Item // keyed by person id
	admins  map[string]models.Item // keyed by email address
	defects map[string][]byte      // boat id -> JSON aggregate
	logs    map[string]models.Item // keyed by log key
	hours   []models.Item
}

// NewMockDB creates an empty mock store.
func NewMockDB() *MockDB {
	return &MockDB{
		boats:   make(map[string]models.Item),
		persons: make(map[string]models.Item),
		admins:  make(map[string]models.Item),
		defects: make(map[string][]byte),
		logs:    make(map[string]models.Item),
	}
}

// Initialize seeds the default fleet so local runs have boats to work with.
func (m *MockDB) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fleet := []models.Boat{
		{ID: "1", Name: "Blue Rib", IsAvailable: true},
		{ID: "2", Name: "Grey Rib", IsAvailable: true},
		{ID: "3", Name: "Spare Rib", IsAvailable: true},
		{ID: "4", Name: "Tornado II", IsAvailable: true},
		{ID: "5", Name: "Yellow Rib", IsAvailable: true},
	}
	for i := range fleet {
		if _, exists := m.boats[fleet[i].ID]; !exists {
			m.boats[fleet[i].ID] = fleet[i].ToItem()
		}
	}
	return nil
}

// GetBoatByID returns the boat with the given id, or nil when absent.
func (m *MockDB) GetBoatByID(ctx context.Context, id string) (*models.Boat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.boats[id]
	if !ok {
		return nil, nil
	}
	return models.BoatFromItem(item), nil
}

// GetBoatByName returns the boat with the given name, or nil when absent.
func (m *MockDB) GetBoatByName(ctx context.Context, name string) (*models.Boat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, item := range m.boats {
		boat := models.BoatFromItem(item)
		if boat.Name == name {
			return boat, nil
		}
	}
	return nil, nil
}

// ListBoats returns all boats sorted by name.
func (m *MockDB) ListBoats(ctx context.Context) ([]models.Boat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listBoatsLocked(func(models.Boat) bool { return true }), nil
}

// ListAvailableBoats returns the boats currently available for checkout.
func (m *MockDB) ListAvailableBoats(ctx context.Context) ([]models.Boat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listBoatsLocked(func(b models.Boat) bool { return b.IsAvailable }), nil
}

// ListCheckedOutBoats returns the boats currently checked out.
func (m *MockDB) ListCheckedOutBoats(ctx context.Context) ([]models.Boat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listBoatsLocked(func(b models.Boat) bool { return !b.IsAvailable }), nil
}

func (m *MockDB) listBoatsLocked(keep func(models.Boat) bool) []models.Boat {
	var boats []models.Boat
	for _, item := range m.boats {
		boat := models.BoatFromItem(item)
		if keep(*boat) {
			boats = append(boats, *boat)
		}
	}
	sort.Slice(boats, func(i, j int) bool {
		return boats[i].Name < boats[j].Name
	})
	return boats
}

// SaveBoat stores the boat, overwriting any previous record.
func (m *MockDB) SaveBoat(ctx context.Context, boat *models.Boat) error {
	if boat == nil || boat.ID == "" {
		return fmt.Errorf("invalid boat object")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.boats[boat.ID] = boat.ToItem()
	return nil
}

// GetPersonByID returns the person with the given id, or nil when absent.
func (m *MockDB) GetPersonByID(ctx context.Context, id string) (*models.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.persons[id]
	if !ok {
		return nil, nil
	}
	return models.PersonFromItem(item), nil
}

// GetPersonByName returns the person matching "First Last", or nil.
func (m *MockDB) GetPersonByName(ctx context.Context, fullName string) (*models.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, item := range m.persons {
		person := models.PersonFromItem(item)
		if person.FullName() == fullName {
			return person, nil
		}
	}
	return nil, nil
}

// ListPersons returns the roster sorted by last then first name.
func (m *MockDB) ListPersons(ctx context.Context) ([]models.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var persons []models.Person
	for _, item := range m.persons {
		persons = append(persons, *models.PersonFromItem(item))
	}
	sort.Slice(persons, func(i, j int) bool {
		if persons[i].LastName != persons[j].LastName {
			return persons[i].LastName < persons[j].LastName
		}
		return persons[i].FirstName < persons[j].FirstName
	})
	return persons, nil
}

// SavePerson stores the person, overwriting any previous record.
func (m *MockDB) SavePerson(ctx context.Context, person *models.Person) error {
	if person == nil || person.ID == "" {
		return fmt.Errorf("invalid person object")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.persons[person.ID] = person.ToItem()
	return nil
}

// DeleteAllPersons clears the roster.
func (m *MockDB) DeleteAllPersons(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.persons = make(map[string]models.Item)
	return nil
}

// FindPersonsBySearchKey matches by the derived search key, then filters by
// year when one was given.
func (m *MockDB) FindPersonsBySearchKey(ctx context.Context, lastInitial string, birthDay, birthMonth, birthYear int) ([]models.Person, error) {
	key := models.SearchKeyFor(lastInitial, birthDay, birthMonth)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var found []models.Person
	for _, item := range m.persons {
		person := models.PersonFromItem(item)
		if person.SearchKey != key {
			continue
		}
		if birthYear != 0 && person.BirthYear != birthYear {
			continue
		}
		found = append(found, *person)
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].ID < found[j].ID
	})
	return found, nil
}

// GetAdminByEmail returns the admin with the given email, or nil when absent.
func (m *MockDB) GetAdminByEmail(ctx context.Context, email string) (*models.AdminPerson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.admins[email]
	if !ok {
		return nil, nil
	}
	return models.AdminPersonFromItem(item), nil
}

// ListAdmins returns all admins sorted by email address.
func (m *MockDB) ListAdmins(ctx context.Context) ([]models.AdminPerson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var admins []models.AdminPerson
	for _, item := range m.admins {
		admins = append(admins, *models.AdminPersonFromItem(item))
	}
	sort.Slice(admins, func(i, j int) bool {
		return admins[i].EmailAddress < admins[j].EmailAddress
	})
	return admins, nil
}

// SaveAdmin stores the admin, overwriting any previous record.
func (m *MockDB) SaveAdmin(ctx context.Context, admin *models.AdminPerson) error {
	if admin == nil || admin.EmailAddress == "" {
		return fmt.Errorf("invalid admin object")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.admins[admin.EmailAddress] = admin.ToItem()
	return nil
}

// DeleteAdmin removes the admin with the given email.
func (m *MockDB) DeleteAdmin(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.admins, email)
	return nil
}

// LoadDefectsForBoat returns the boat's open defect aggregate, or nil.
func (m *MockDB) LoadDefectsForBoat(ctx context.Context, boatID string) (*models.DefectsForBoat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.defects[boatID]
	if !ok {
		return nil, nil
	}
	var defects models.DefectsForBoat
	if err := json.Unmarshal(raw, &defects); err != nil {
		return nil, fmt.Errorf("failed to decode defects for boat %s: %w", boatID, err)
	}
	return &defects, nil
}

// SaveDefectsForBoat stores the aggregate, overwriting any previous record.
func (m *MockDB) SaveDefectsForBoat(ctx context.Context, defects *models.DefectsForBoat) error {
	if defects == nil || defects.BoatID == "" {
		return fmt.Errorf("invalid defects object")
	}
	raw, err := json.Marshal(defects)
	if err != nil {
		return fmt.Errorf("failed to encode defects for boat %s: %w", defects.BoatID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.defects[defects.BoatID] = raw
	return nil
}

// DeleteDefectsForBoat removes the boat's defect aggregate.
func (m *MockDB) DeleteDefectsForBoat(ctx context.Context, boatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.defects, boatID)
	return nil
}

// ListDefectsForAllBoats returns every open aggregate sorted by boat id.
func (m *MockDB) ListDefectsForAllBoats(ctx context.Context) ([]models.DefectsForBoat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []models.DefectsForBoat
	for boatID, raw := range m.defects {
		var defects models.DefectsForBoat
		if err := json.Unmarshal(raw, &defects); err != nil {
			return nil, fmt.Errorf("failed to decode defects for boat %s: %w", boatID, err)
		}
		all = append(all, defects)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].BoatID < all[j].BoatID
	})
	return all, nil
}

// AppendLog stores the entry, rejecting duplicate log keys.
func (m *MockDB) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	if entry == nil || entry.LogKey == "" {
		return fmt.Errorf("invalid log entry")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.logs[entry.LogKey]; exists {
		return fmt.Errorf("log key %s: %w", entry.LogKey, storage.ErrDuplicateLogKey)
	}
	m.logs[entry.LogKey] = entry.ToItem()
	return nil
}

// ListLogEntries returns all entries sorted by check-out time ascending.
func (m *MockDB) ListLogEntries(ctx context.Context) ([]models.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []models.LogEntry
	for _, item := range m.logs {
		entries = append(entries, *models.LogEntryFromItem(item))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CheckOutDateTime.Before(entries[j].CheckOutDateTime)
	})
	return entries, nil
}

// SaveEngineHours appends an engine-hours record. An empty reason is stored
// as "Unknown".
func (m *MockDB) SaveEngineHours(ctx context.Context, hours *models.EngineHours) error {
	if hours == nil || hours.BoatID == "" {
		return fmt.Errorf("invalid engine hours object")
	}
	if hours.Reason == "" {
		hours.Reason = "Unknown"
	}
	if hours.Timestamp.IsZero() {
		hours.Timestamp = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.hours = append(m.hours, hours.ToItem())
	return nil
}

// GetEngineHoursByBoat returns the boat's engine-hours records, oldest first.
func (m *MockDB) GetEngineHoursByBoat(ctx context.Context, boatID string) ([]models.EngineHours, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []models.EngineHours
	for _, item := range m.hours {
		record := models.EngineHoursFromItem(item)
		if record.BoatID == boatID {
			records = append(records, *record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// ListAllEngineHours returns every engine-hours record, oldest first.
func (m *MockDB) ListAllEngineHours(ctx context.Context) ([]models.EngineHours, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []models.EngineHours
	for _, item := range m.hours {
		records = append(records, *models.EngineHoursFromItem(item))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// Close does nothing for the mock store.
func (m *MockDB) Close() error {
	return nil
}
