package models

import "time"

// Log entry actions.
const (
	ActionCheckOut = "check out"
	ActionCheckIn  = "check in"
)

// LogEntry is an audit record of one check-out or check-in. LogKey is the
// store's idempotency key: appending a second entry with the same key must
// fail rather than overwrite history.
type LogEntry struct {
	LogKey           string
	Action           string
	BoatName         string
	PersonName       string
	CheckOutDateTime time.Time
	CheckInDateTime  time.Time
	CheckOutReason   string
	Defect           string // flattened defect description
	AdditionalInfo   string
	EngineHours      float64
}

// DeriveLogKey builds the default log key: "boatName-ISOtimestamp".
func DeriveLogKey(boatName string, at time.Time) string {
	return boatName + "-" + at.UTC().Format(time.RFC3339)
}

// EnsureKey fills in the derived key when none was supplied explicitly.
func (l *LogEntry) EnsureKey(at time.Time) {
	if l.LogKey == "" {
		l.LogKey = DeriveLogKey(l.BoatName, at)
	}
}

// ToItem converts the log entry to the generic key-value item shape.
func (l *LogEntry) ToItem() Item {
	return Item{
		"logKey":           l.LogKey,
		"action":           l.Action,
		"boatName":         l.BoatName,
		"personName":       l.PersonName,
		"checkOutDateTime": l.CheckOutDateTime,
		"checkInDateTime":  l.CheckInDateTime,
		"checkOutReason":   l.CheckOutReason,
		"defect":           l.Defect,
		"additionalInfo":   l.AdditionalInfo,
		"engineHours":      l.EngineHours,
	}
}

// LogEntryFromItem builds a LogEntry from the generic key-value item shape.
func LogEntryFromItem(item Item) *LogEntry {
	return &LogEntry{
		LogKey:           itemString(item, "logKey"),
		Action:           itemString(item, "action"),
		BoatName:         itemString(item, "boatName"),
		PersonName:       itemString(item, "personName"),
		CheckOutDateTime: itemTime(item, "checkOutDateTime"),
		CheckInDateTime:  itemTime(item, "checkInDateTime"),
		CheckOutReason:   itemString(item, "checkOutReason"),
		Defect:           itemString(item, "defect"),
		AdditionalInfo:   itemString(item, "additionalInfo"),
		EngineHours:      itemFloat(item, "engineHours"),
	}
}
