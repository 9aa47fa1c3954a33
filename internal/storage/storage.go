package storage

import (
	"context"
	"errors"

	"boathouse/internal/models"
)

// ErrDuplicateLogKey is returned by AppendLog when an entry with the same
// log key already exists. History is never silently overwritten.
var ErrDuplicateLogKey = errors.New("duplicate log key")

// BoatStore defines boat persistence operations.
type BoatStore interface {
	GetBoatByID(ctx context.Context, id string) (*models.Boat, error)
	GetBoatByName(ctx context.Context, name string) (*models.Boat, error)
	ListBoats(ctx context.Context) ([]models.Boat, error)
	ListAvailableBoats(ctx context.Context) ([]models.Boat, error)
	ListCheckedOutBoats(ctx context.Context) ([]models.Boat, error)
	SaveBoat(ctx context.Context, boat *models.Boat) error
}

// PersonStore defines member persistence operations.
type PersonStore interface {
	GetPersonByID(ctx context.Context, id string) (*models.Person, error)
	GetPersonByName(ctx context.Context, fullName string) (*models.Person, error)
	ListPersons(ctx context.Context) ([]models.Person, error)
	SavePerson(ctx context.Context, person *models.Person) error
	DeleteAllPersons(ctx context.Context) error

	// FindPersonsBySearchKey matches by last-name initial and birth day/month.
	// A zero birthYear matches any year.
	FindPersonsBySearchKey(ctx context.Context, lastInitial string, birthDay, birthMonth, birthYear int) ([]models.Person, error)
}

// AdminStore defines administrator persistence operations.
type AdminStore interface {
	GetAdminByEmail(ctx context.Context, email string) (*models.AdminPerson, error)
	ListAdmins(ctx context.Context) ([]models.AdminPerson, error)
	SaveAdmin(ctx context.Context, admin *models.AdminPerson) error
	DeleteAdmin(ctx context.Context, email string) error
}

// DefectStore defines persistence for per-boat defect aggregates.
type DefectStore interface {
	// LoadDefectsForBoat returns nil (no error) when the boat has no open
	// defect record.
	LoadDefectsForBoat(ctx context.Context, boatID string) (*models.DefectsForBoat, error)
	SaveDefectsForBoat(ctx context.Context, defects *models.DefectsForBoat) error
	DeleteDefectsForBoat(ctx context.Context, boatID string) error
	ListDefectsForAllBoats(ctx context.Context) ([]models.DefectsForBoat, error)
}

// LogStore defines persistence for the audit log.
type LogStore interface {
	// AppendLog performs a conditional write: it fails with
	// ErrDuplicateLogKey when the entry's key already exists.
	AppendLog(ctx context.Context, entry *models.LogEntry) error

	// ListLogEntries returns all entries sorted by check-out time ascending.
	ListLogEntries(ctx context.Context) ([]models.LogEntry, error)
}

// EngineHoursStore defines persistence for engine-hours records.
type EngineHoursStore interface {
	SaveEngineHours(ctx context.Context, hours *models.EngineHours) error
	GetEngineHoursByBoat(ctx context.Context, boatID string) ([]models.EngineHours, error)
	ListAllEngineHours(ctx context.Context) ([]models.EngineHours, error)
}

// Storage aggregates the per-entity stores behind one lifecycle.
type Storage interface {
	BoatStore
	PersonStore
	AdminStore
	DefectStore
	LogStore
	EngineHoursStore

	Initialize(ctx context.Context) error
	Close() error
}
