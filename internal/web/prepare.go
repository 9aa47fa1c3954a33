package web

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"boathouse/internal/dao"
	"boathouse/internal/models"
)

func errInvalidBoat(id string) error {
	return fmt.Errorf("invalid boat object: boat %s not found", id)
}

// prepareFunc gathers or persists whatever the target page needs once the
// transition has been decided.
type prepareFunc func(ctx context.Context, wctx *WizardContext, form url.Values) (ViewModel, error)

// prepareNextPage dispatches on the target page. Pages without an entry get
// an empty view model for their shape.
func (c *Controller) prepareNextPage(ctx context.Context, wctx *WizardContext, target Page, form url.Values) (ViewModel, error) {
	if handler, ok := c.prepare[target]; ok {
		return handler(ctx, wctx, form)
	}
	switch target {
	case PageRecordEngineHours:
		return EngineHoursView{}, nil
	case PageAreThereDefects:
		return DefectsQuestionView{}, nil
	case PageReportFault:
		return ReportFaultView{DefectTypes: c.dao.PossibleDefects()}, nil
	}
	return Page1View{}, nil
}

func (c *Controller) preparePage1(ctx context.Context, wctx *WizardContext, form url.Values) (ViewModel, error) {
	return Page1View{}, nil
}

func (c *Controller) prepareSelectBoat(ctx context.Context, wctx *WizardContext, form url.Values) (ViewModel, error) {
	boats, err := c.dao.Store().ListAvailableBoats(ctx)
	if err != nil {
		return nil, err
	}
	view := SelectBoatView{Boats: boats}
	if len(boats) == 0 {
		view.Message = "Sorry: all boats are currently checked out!"
	}
	return view, nil
}

func (c *Controller) prepareWhoAreYou(ctx context.Context, wctx *WizardContext, form url.Values) (ViewModel, error) {
	people, err := c.dao.Store().ListPersons(ctx)
	if err != nil {
		return nil, err
	}
	return WhoAreYouView{People: people}, nil
}

func (c *Controller) prepareReason(ctx context.Context, wctx *WizardContext, form url.Values) (ViewModel, error) {
	return ReasonView{Reasons: c.cfg.CheckoutReasons}, nil
}

func (c *Controller) prepareStartCheckIn(ctx context.Context, wctx *WizardContext, form url.Values) (ViewModel, error) {
	boats, err := c.dao.Store().ListCheckedOutBoats(ctx)
	if err != nil {
		return nil, err
	}
	return StartCheckInView{Boats: boats}, nil
}

// prepareCheckedOut finalizes the check-out: the boat is marked unavailable
// and saved, and the accumulated log entry is flushed. An absent boat is a
// soft failure, surfaced as a message.
func (c *Controller) prepareCheckedOut(ctx context.Context, wctx *WizardContext, form url.Values) (ViewModel, error) {
	if wctx.BoatID == "" {
		c.logger.Warn("No boat selected for checkout")
		return CheckedOutView{Message: "No boat selected for checkout."}, nil
	}
	boat, err := c.dao.Store().GetBoatByID(ctx, wctx.BoatID)
	if err != nil {
		return nil, err
	}
	if boat == nil {
		c.logger.Warn("No boat selected for checkout", zap.String("boat_id", wctx.BoatID))
		return CheckedOutView{Message: "No boat selected for checkout."}, nil
	}

	boat.IsAvailable = false
	if err := c.dao.Store().SaveBoat(ctx, boat); err != nil {
		return nil, err
	}
	c.flushLogEntry(ctx, wctx)
	c.logger.Info("Boat checked out", zap.String("boat", boat.Name))
	return CheckedOutView{BoatName: boat.Name}, nil
}

// prepareCheckInComplete is the one place the accumulated check-in state is
// flushed: defects merged, engine hours recorded, boat made available, log
// entry appended.
func (c *Controller) prepareCheckInComplete(ctx context.Context, wctx *WizardContext, form url.Values) (ViewModel, error) {
	if wctx.BoatID == "" {
		c.logger.Warn("No boat selected for check-in")
		return CheckInCompleteView{Message: "No boat selected for check-in."}, nil
	}

	boat, err := c.dao.CheckInBoat(ctx, wctx.BoatID, wctx.Defects, wctx.EngineHours, boatReason(wctx))
	if err != nil {
		return nil, err
	}

	if wctx.LogEntry != nil {
		wctx.LogEntry.CheckInDateTime = c.now()
		wctx.LogEntry.EngineHours = wctx.EngineHours
		wctx.LogEntry.AdditionalInfo = wctx.AdditionalInfo
		wctx.LogEntry.Defect = c.describeSubmitted(wctx.Defects)
	}
	c.flushLogEntry(ctx, wctx)

	if len(wctx.Defects) > 0 {
		if open, err := c.dao.Store().LoadDefectsForBoat(ctx, wctx.BoatID); err != nil {
			c.logger.Error("Failed to load defects for alert", zap.Error(err))
		} else {
			c.notifier.DefectsReported(boat.Name, open)
		}
	}

	return CheckInCompleteView{
		BoatName: boat.Name,
		Message:  fmt.Sprintf("%s checked in. Thank you!", boat.Name),
	}, nil
}

// flushLogEntry appends the session's accumulated log entry. A missing
// entry (expired session, interrupted run) is logged and skipped; an
// incomplete wizard run must not crash the request.
func (c *Controller) flushLogEntry(ctx context.Context, wctx *WizardContext) {
	if wctx.LogEntry == nil {
		c.logger.Error("No log entry in session, skipping audit log write")
		return
	}
	wctx.LogEntry.EnsureKey(c.now())
	if err := c.dao.Store().AppendLog(ctx, wctx.LogEntry); err != nil {
		c.logger.Error("Failed to append log entry",
			zap.String("log_key", wctx.LogEntry.LogKey), zap.Error(err))
	}
}

func (c *Controller) describeSubmitted(submitted []dao.SubmittedDefect) string {
	types := make([]models.DefectType, 0, len(submitted))
	for _, s := range submitted {
		if defectType, ok := c.dao.DefectTypeByID(s.TypeID); ok {
			types = append(types, defectType)
		}
	}
	return dao.DescribeDefects(types)
}

func boatReason(wctx *WizardContext) string {
	if wctx.LogEntry != nil {
		return wctx.LogEntry.CheckOutReason
	}
	return ""
}
