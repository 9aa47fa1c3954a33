package web

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"boathouse/internal/dao"
	"boathouse/internal/models"
)

// processFunc applies the side effects of the current page's submitted
// form, before the target page is computed. It reports whether navigation
// may advance; returning false without an error re-renders the current
// page.
type processFunc func(ctx context.Context, wctx *WizardContext, form url.Values) (bool, error)

// processForm dispatches to the current page's handler. Pages without an
// entry have no processing-stage side effects. An unrecognized page resets
// the wizard to Page1 and blocks the advance so Page1 itself renders.
func (c *Controller) processForm(ctx context.Context, wctx *WizardContext, current Page, form url.Values) (bool, error) {
	if !KnownPage(current) {
		c.logger.Warn("Unrecognized page in session, resetting", zap.String("page", string(current)))
		wctx.PageBody = Page1
		return false, nil
	}
	handler, ok := c.process[current]
	if !ok {
		return true, nil
	}
	return handler(ctx, wctx, form)
}

// processPage1 reads the check_in choice. The flag selects which transition
// graph governs the rest of this wizard run, so a pass through page1 also
// starts a fresh accumulator.
func (c *Controller) processPage1(ctx context.Context, wctx *WizardContext, form url.Values) (bool, error) {
	wctx.CheckIn = form.Get("check_in") == "true"
	wctx.ResetRun()
	return true, nil
}

// processBoatSelection checks out the selected boat and seeds the partial
// log entry. A selection the store cannot materialize is a hard error.
func (c *Controller) processBoatSelection(ctx context.Context, wctx *WizardContext, form url.Values) (bool, error) {
	boatID := form.Get("boat")
	if boatID == "" {
		return true, nil
	}

	ok, err := c.dao.CheckOutBoat(ctx, boatID, wctx.Person, "")
	if err != nil {
		return false, err
	}
	if !ok {
		// Someone else took the boat between the page render and the
		// submit. The run keeps going and overwrites the holder.
		c.logger.Warn("Selected boat already checked out", zap.String("boat_id", boatID))
	}
	boat, err := c.dao.Store().GetBoatByID(ctx, boatID)
	if err != nil {
		return false, err
	}
	if boat == nil {
		return false, errInvalidBoat(boatID)
	}

	wctx.BoatID = boatID
	wctx.LogEntry = &models.LogEntry{
		Action:           models.ActionCheckOut,
		BoatName:         boat.Name,
		CheckOutDateTime: c.now(),
	}
	return true, nil
}

// processWhoAreYou resolves the selected person. A failed lookup is soft:
// the wizard logs and continues rather than blocking progress.
func (c *Controller) processWhoAreYou(ctx context.Context, wctx *WizardContext, form url.Values) (bool, error) {
	personID := form.Get("person")
	if personID == "" {
		return true, nil
	}
	person, err := c.dao.Store().GetPersonByID(ctx, personID)
	if err != nil {
		return false, err
	}
	if person == nil {
		c.logger.Warn("Person not found", zap.String("person_id", personID))
		return true, nil
	}
	wctx.Person = person
	if wctx.LogEntry != nil {
		wctx.LogEntry.PersonName = person.FullName()
	}
	return true, nil
}

// processReasonForCheckout records the reason and finalizes the checkout on
// the boat record.
func (c *Controller) processReasonForCheckout(ctx context.Context, wctx *WizardContext, form url.Values) (bool, error) {
	reason := form.Get("reason")
	if wctx.LogEntry != nil {
		wctx.LogEntry.CheckOutReason = reason
	}
	if wctx.BoatID == "" {
		c.logger.Warn("No boat in session at reasonForCheckout")
		return true, nil
	}
	if err := c.dao.FinalizeCheckout(ctx, wctx.BoatID, wctx.Person, reason); err != nil {
		return false, err
	}
	return true, nil
}

// processStartCheckIn is the check-in initialization hook. When the form
// names a boat it becomes the subject of the run and the check-in log
// entry is seeded; otherwise this is a no-op.
func (c *Controller) processStartCheckIn(ctx context.Context, wctx *WizardContext, form url.Values) (bool, error) {
	boatID := form.Get("boat")
	if boatID == "" {
		return true, nil
	}
	boat, err := c.dao.Store().GetBoatByID(ctx, boatID)
	if err != nil {
		return false, err
	}
	if boat == nil {
		c.logger.Warn("Boat not found for check-in", zap.String("boat_id", boatID))
		return true, nil
	}
	wctx.BoatID = boatID
	wctx.LogEntry = &models.LogEntry{
		Action:           models.ActionCheckIn,
		BoatName:         boat.Name,
		PersonName:       boat.CheckedOutToName,
		CheckOutReason:   boat.CheckOutReason,
		CheckOutDateTime: boat.CheckedOutAt,
	}
	return true, nil
}

// processRecordEngineHours stashes the reported hours in the wizard
// context; they are flushed with everything else at checkInComplete.
func (c *Controller) processRecordEngineHours(ctx context.Context, wctx *WizardContext, form url.Values) (bool, error) {
	raw := form.Get("hours")
	if raw == "" {
		return true, nil
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.logger.Warn("Invalid engine hours submitted", zap.String("hours", raw))
		return true, nil
	}
	wctx.EngineHours = hours
	return true, nil
}

// processReportFault stashes the picked defects and additional info.
func (c *Controller) processReportFault(ctx context.Context, wctx *WizardContext, form url.Values) (bool, error) {
	wctx.AdditionalInfo = form.Get("additionalInfo")
	for _, raw := range form["defect"] {
		typeID, err := strconv.Atoi(raw)
		if err != nil {
			c.logger.Warn("Invalid defect id submitted", zap.String("defect", raw))
			continue
		}
		wctx.Defects = append(wctx.Defects, dao.SubmittedDefect{
			TypeID:         typeID,
			AdditionalInfo: wctx.AdditionalInfo,
		})
	}
	return true, nil
}
