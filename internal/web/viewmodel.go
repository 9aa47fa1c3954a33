package web

import "boathouse/internal/models"

// ViewModel is the data prepared for the page the wizard is about to show.
// Each page gets its own concrete shape instead of an open-ended bag.
type ViewModel interface {
	ViewPage() Page
}

// Page1View is the check-in-or-check-out choice page.
type Page1View struct{}

func (Page1View) ViewPage() Page { return Page1 }

// SelectBoatView lists the boats available for checkout.
type SelectBoatView struct {
	Boats   []models.Boat `json:"boats"`
	Message string        `json:"message,omitempty"`
}

func (SelectBoatView) ViewPage() Page { return PageSelectBoatToCheckout }

// WhoAreYouView lists the member roster for selection.
type WhoAreYouView struct {
	People []models.Person `json:"people"`
}

func (WhoAreYouView) ViewPage() Page { return PageWhoAreYou }

// ReasonView lists the configured checkout reasons.
type ReasonView struct {
	Reasons []string `json:"reasons"`
}

func (ReasonView) ViewPage() Page { return PageReasonForCheckout }

// CheckedOutView confirms a completed checkout.
type CheckedOutView struct {
	BoatName string `json:"boatName,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (CheckedOutView) ViewPage() Page { return PageCheckedOut }

// StartCheckInView lists the boats currently out.
type StartCheckInView struct {
	Boats []models.Boat `json:"boats"`
}

func (StartCheckInView) ViewPage() Page { return PageStartCheckIn }

// EngineHoursView is the engine-hours entry page.
type EngineHoursView struct{}

func (EngineHoursView) ViewPage() Page { return PageRecordEngineHours }

// DefectsQuestionView is the are-there-defects question page.
type DefectsQuestionView struct{}

func (DefectsQuestionView) ViewPage() Page { return PageAreThereDefects }

// ReportFaultView is the defect-reporting page, listing the selectable
// defect types.
type ReportFaultView struct {
	DefectTypes []models.DefectType `json:"defectTypes"`
}

func (ReportFaultView) ViewPage() Page { return PageReportFault }

// CheckInCompleteView confirms a completed check-in.
type CheckInCompleteView struct {
	BoatName string `json:"boatName,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (CheckInCompleteView) ViewPage() Page { return PageCheckInComplete }
