package models

import (
	"time"

	"github.com/google/uuid"
)

// DefectType is an entry in the static defect catalog.
type DefectType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ReportedDefect is one occurrence of a defect reported against a boat.
type ReportedDefect struct {
	DefectID       string     `json:"defectId"`
	Type           DefectType `json:"defectType"`
	DateReported   time.Time  `json:"dateReported"`
	AdditionalInfo string     `json:"additionalInfo,omitempty"`
}

// NewReportedDefect wraps a catalog entry as a fresh report.
func NewReportedDefect(defectType DefectType, additionalInfo string, at time.Time) ReportedDefect {
	return ReportedDefect{
		DefectID:       uuid.NewString(),
		Type:           defectType,
		DateReported:   at,
		AdditionalInfo: additionalInfo,
	}
}

// DefectsForBoat aggregates the open defect reports for one boat. The
// aggregate spans a defect episode: from the first report until the last
// report is cleared.
type DefectsForBoat struct {
	BoatID             string           `json:"boatId"`
	Reported           []ReportedDefect `json:"reportedDefects"`
	OriginallyReported time.Time        `json:"originallyReported"`
	Timestamp          time.Time        `json:"timestamp"`
}

// ClearDefect removes one reported defect by id. It reports whether a
// matching report was found. The caller decides whether an emptied
// aggregate is deleted or saved.
func (d *DefectsForBoat) ClearDefect(defectID string) bool {
	for i, r := range d.Reported {
		if r.DefectID == defectID {
			d.Reported = append(d.Reported[:i], d.Reported[i+1:]...)
			return true
		}
	}
	return false
}

// HasDefects reports whether any reported defects remain.
func (d *DefectsForBoat) HasDefects() bool {
	return len(d.Reported) > 0
}

// FindByType returns the reported defect with the given catalog id, if any.
func (d *DefectsForBoat) FindByType(typeID int) *ReportedDefect {
	for i := range d.Reported {
		if d.Reported[i].Type.ID == typeID {
			return &d.Reported[i]
		}
	}
	return nil
}
