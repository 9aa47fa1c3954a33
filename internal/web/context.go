package web

import (
	"encoding/gob"

	"boathouse/internal/dao"
	"boathouse/internal/models"
)

// WizardContext is the per-session accumulator for an in-progress wizard
// run: the current page, the selected graph, and the partial selections
// gathered across pages. It is the typed replacement for the loose
// session-attribute bag, serialized opaquely into the cookie session.
type WizardContext struct {
	PageBody Page
	CheckIn  bool

	BoatID   string
	Person   *models.Person
	LogEntry *models.LogEntry

	// Check-in submissions stashed until the finalization page flushes
	// them to the store.
	EngineHours    float64
	Defects        []dao.SubmittedDefect
	AdditionalInfo string

	// AdminEmail is set after a successful admin login.
	AdminEmail string
}

func init() {
	gob.Register(&WizardContext{})
	gob.Register(&models.Person{})
	gob.Register(&models.LogEntry{})
	gob.Register(dao.SubmittedDefect{})
}

// CurrentPage returns the wizard's current page, defaulting to Page1 for a
// cold session.
func (w *WizardContext) CurrentPage() Page {
	if w.PageBody == "" {
		return Page1
	}
	return w.PageBody
}

// ResetRun clears the accumulator for a fresh wizard run, keeping the
// admin identity.
func (w *WizardContext) ResetRun() {
	w.BoatID = ""
	w.Person = nil
	w.LogEntry = nil
	w.EngineHours = 0
	w.Defects = nil
	w.AdditionalInfo = ""
}
