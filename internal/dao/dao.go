package dao

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"boathouse/internal/models"
	"boathouse/internal/storage"
)

// DAO is the data-access facade. It aggregates the entity stores and owns
// the two cross-entity workflows: check-in (defect merge, engine hours,
// boat availability, audit log) and issue discovery (boats joined with
// their open defect records).
type DAO struct {
	store  storage.Storage
	logger *zap.Logger
	now    func() time.Time
}

// New creates a DAO over the given storage.
func New(store storage.Storage, logger *zap.Logger) *DAO {
	return &DAO{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Store exposes the underlying storage for callers that need plain
// single-entity operations.
func (d *DAO) Store() storage.Storage {
	return d.store
}

// PossibleDefects returns the static defect catalog.
func (d *DAO) PossibleDefects() []models.DefectType {
	return []models.DefectType{
		{ID: 1, Name: "Engine failure", Description: "The engine is not starting"},
		{ID: 2, Name: "Electrical issue", Description: "There is a problem with the electrical system"},
		{ID: 3, Name: "Hull damage", Description: "The hull is damaged"},
		{ID: 4, Name: "Propeller problem", Description: "The propeller is not functioning"},
		{ID: 5, Name: "Fuel system issue", Description: "There is a problem with the fuel system"},
		{ID: 6, Name: "Steering malfunction", Description: "The steering is not working properly"},
		{ID: 7, Name: "Navigation system failure", Description: "The navigation system is not working"},
		{ID: 8, Name: "Safety equipment missing", Description: "Safety equipment is not on board"},
		{ID: 9, Name: "Weather-related issues", Description: "Weather conditions are affecting the boat"},
	}
}

// DefectTypeByID looks up a catalog entry.
func (d *DAO) DefectTypeByID(id int) (models.DefectType, bool) {
	for _, dt := range d.PossibleDefects() {
		if dt.ID == id {
			return dt, true
		}
	}
	return models.DefectType{}, false
}

// CheckOutBoat marks the boat unavailable and records who took it and why.
// It reports false, without error, when the boat is already checked out.
func (d *DAO) CheckOutBoat(ctx context.Context, boatID string, person *models.Person, reason string) (bool, error) {
	boat, err := d.store.GetBoatByID(ctx, boatID)
	if err != nil {
		return false, err
	}
	if boat == nil {
		return false, fmt.Errorf("invalid boat object: boat %s not found", boatID)
	}
	if !boat.IsAvailable {
		d.logger.Warn("Boat not available for checkout", zap.String("boat", boat.Name))
		return false, nil
	}
	boat.MarkCheckedOut(person, reason, d.now())
	if err := d.store.SaveBoat(ctx, boat); err != nil {
		return false, err
	}
	return true, nil
}

// FinalizeCheckout annotates an already checked-out boat with the person
// taking it and the reason given. Availability is untouched; that was
// flipped when the boat was selected.
func (d *DAO) FinalizeCheckout(ctx context.Context, boatID string, person *models.Person, reason string) error {
	boat, err := d.store.GetBoatByID(ctx, boatID)
	if err != nil {
		return err
	}
	if boat == nil {
		return fmt.Errorf("invalid boat object: boat %s not found", boatID)
	}
	boat.CheckOutReason = reason
	if person != nil {
		boat.CheckedOutTo = person.ID
		boat.CheckedOutToName = person.FullName()
	}
	return d.store.SaveBoat(ctx, boat)
}

// SubmittedDefect is one defect reported on the check-in form.
type SubmittedDefect struct {
	TypeID         int
	AdditionalInfo string
}

// MergeDefects reconciles newly submitted defects against an existing open
// aggregate. A submission matching an existing report's defect type appends
// its info to that report (joined with "; "), keeping the original report
// date; anything else becomes a fresh report. Resubmitting the same defect
// concatenates again: the trail within one episode is append-only.
func MergeDefects(existing *models.DefectsForBoat, boatID string, submitted []models.ReportedDefect, now time.Time) *models.DefectsForBoat {
	if existing == nil {
		return &models.DefectsForBoat{
			BoatID:             boatID,
			Reported:           submitted,
			OriginallyReported: now,
			Timestamp:          now,
		}
	}

	for _, report := range submitted {
		if current := existing.FindByType(report.Type.ID); current != nil {
			if report.AdditionalInfo != "" {
				if current.AdditionalInfo != "" {
					current.AdditionalInfo += "; " + report.AdditionalInfo
				} else {
					current.AdditionalInfo = report.AdditionalInfo
				}
			}
			continue
		}
		existing.Reported = append(existing.Reported, report)
	}
	existing.Timestamp = now
	return existing
}

// CheckInBoat performs the check-in workflow: merge the reported defects
// into the boat's open aggregate, record the engine hours, and flip the
// boat back to available. The three writes are independent; there is no
// atomicity across them.
func (d *DAO) CheckInBoat(ctx context.Context, boatID string, submitted []SubmittedDefect, hours float64, hoursReason string) (*models.Boat, error) {
	boat, err := d.store.GetBoatByID(ctx, boatID)
	if err != nil {
		return nil, err
	}
	if boat == nil {
		return nil, fmt.Errorf("invalid boat object: boat %s not found", boatID)
	}

	now := d.now()

	if len(submitted) > 0 {
		reports := make([]models.ReportedDefect, 0, len(submitted))
		for _, s := range submitted {
			defectType, ok := d.DefectTypeByID(s.TypeID)
			if !ok {
				d.logger.Warn("Unknown defect type submitted", zap.Int("type_id", s.TypeID))
				continue
			}
			reports = append(reports, models.NewReportedDefect(defectType, s.AdditionalInfo, now))
		}
		if len(reports) > 0 {
			existing, err := d.store.LoadDefectsForBoat(ctx, boatID)
			if err != nil {
				return nil, err
			}
			merged := MergeDefects(existing, boatID, reports, now)
			if err := d.store.SaveDefectsForBoat(ctx, merged); err != nil {
				return nil, err
			}
		}
	}

	if err := d.store.SaveEngineHours(ctx, &models.EngineHours{
		BoatID:    boatID,
		Hours:     hours,
		Reason:    hoursReason,
		Timestamp: now,
	}); err != nil {
		return nil, err
	}

	boat.MarkCheckedIn(now)
	if err := d.store.SaveBoat(ctx, boat); err != nil {
		return nil, err
	}
	return boat, nil
}

// CheckInAllBoats returns every checked-out boat to the fleet.
func (d *DAO) CheckInAllBoats(ctx context.Context) error {
	boats, err := d.store.ListCheckedOutBoats(ctx)
	if err != nil {
		return err
	}
	for i := range boats {
		boats[i].MarkCheckedIn(d.now())
		if err := d.store.SaveBoat(ctx, &boats[i]); err != nil {
			return err
		}
		d.logger.Info("Boat checked in", zap.String("boat", boats[i].Name))
	}
	return nil
}

// BoatsWithIssues joins boats with their open defect aggregates, returning
// only the boats that currently have defects. The attached aggregate is
// transient; it is never persisted with the boat.
func (d *DAO) BoatsWithIssues(ctx context.Context) ([]models.Boat, error) {
	defects, err := d.store.ListDefectsForAllBoats(ctx)
	if err != nil {
		return nil, err
	}
	byBoat := make(map[string]*models.DefectsForBoat, len(defects))
	for i := range defects {
		if defects[i].HasDefects() {
			byBoat[defects[i].BoatID] = &defects[i]
		}
	}
	if len(byBoat) == 0 {
		return nil, nil
	}

	boats, err := d.store.ListBoats(ctx)
	if err != nil {
		return nil, err
	}
	var withIssues []models.Boat
	for _, boat := range boats {
		if open, ok := byBoat[boat.ID]; ok {
			boat.Defects = open
			withIssues = append(withIssues, boat)
		}
	}
	return withIssues, nil
}

// ClearDefect removes one reported defect from a boat's aggregate. When the
// last report is cleared the aggregate is deleted rather than persisted
// empty. It reports whether a matching defect was found.
func (d *DAO) ClearDefect(ctx context.Context, boatID, defectID string) (bool, error) {
	defects, err := d.store.LoadDefectsForBoat(ctx, boatID)
	if err != nil {
		return false, err
	}
	if defects == nil {
		return false, nil
	}
	if !defects.ClearDefect(defectID) {
		return false, nil
	}
	if !defects.HasDefects() {
		if err := d.store.DeleteDefectsForBoat(ctx, boatID); err != nil {
			return false, err
		}
		return true, nil
	}
	defects.Timestamp = d.now()
	return true, d.store.SaveDefectsForBoat(ctx, defects)
}

// ClearAllFaults deletes every open defect aggregate.
func (d *DAO) ClearAllFaults(ctx context.Context) error {
	defects, err := d.store.ListDefectsForAllBoats(ctx)
	if err != nil {
		return err
	}
	for _, open := range defects {
		if err := d.store.DeleteDefectsForBoat(ctx, open.BoatID); err != nil {
			return err
		}
	}
	return nil
}

// EngineHoursSortedByBoat returns all engine-hours records ordered by
// boat id.
func (d *DAO) EngineHoursSortedByBoat(ctx context.Context) ([]models.EngineHours, error) {
	records, err := d.store.ListAllEngineHours(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].BoatID < records[j].BoatID
	})
	return records, nil
}

// EngineHoursSortedByReason returns all engine-hours records ordered by
// reason.
func (d *DAO) EngineHoursSortedByReason(ctx context.Context) ([]models.EngineHours, error) {
	records, err := d.store.ListAllEngineHours(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Reason < records[j].Reason
	})
	return records, nil
}

// EngineHoursTotalsByReason sums recorded hours per checkout reason.
func (d *DAO) EngineHoursTotalsByReason(ctx context.Context) (map[string]float64, error) {
	records, err := d.store.ListAllEngineHours(ctx)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64)
	for _, record := range records {
		totals[record.Reason] += record.Hours
	}
	return totals, nil
}

// DescribeDefects flattens a defect list for the audit log's defect column.
func DescribeDefects(defects []models.DefectType) string {
	names := make([]string, 0, len(defects))
	for _, dt := range defects {
		names = append(names, dt.Name)
	}
	return strings.Join(names, ", ")
}
