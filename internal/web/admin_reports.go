package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// handleLogReport streams the full usage log as a CSV download, ordered by
// check-out time.
func (c *Controller) handleLogReport(w http.ResponseWriter, r *http.Request) {
	entries, err := c.dao.Store().ListLogEntries(r.Context())
	if err != nil {
		c.logger.Error("Failed to list log entries", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="rib-log.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"Boat", "Action", "Person", "Checked Out", "Checked In",
		"Reason", "Engine Hours", "Defect", "Additional Info",
	})
	for _, entry := range entries {
		_ = writer.Write([]string{
			entry.BoatName,
			entry.Action,
			entry.PersonName,
			formatLogTime(entry.CheckOutDateTime),
			formatLogTime(entry.CheckInDateTime),
			entry.CheckOutReason,
			strconv.FormatFloat(entry.EngineHours, 'f', -1, 64),
			entry.Defect,
			entry.AdditionalInfo,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		c.logger.Error("Failed to write log report", zap.Error(err))
	}
}

func formatLogTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// handleBoatsWithIssues lists boats carrying open defects, each with its
// defect summary.
func (c *Controller) handleBoatsWithIssues(w http.ResponseWriter, r *http.Request) {
	boats, err := c.dao.BoatsWithIssues(r.Context())
	if err != nil {
		c.logger.Error("Failed to list boats with issues", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	type issueView struct {
		BoatID   string `json:"boatId"`
		BoatName string `json:"boatName"`
		Summary  string `json:"summary"`
		Defects  any    `json:"defects"`
	}
	views := make([]issueView, 0, len(boats))
	for _, boat := range boats {
		summary := ""
		if boat.Defects != nil {
			types := make([]string, 0, len(boat.Defects.Reported))
			for _, report := range boat.Defects.Reported {
				types = append(types, report.Type.Name)
			}
			summary = strings.Join(types, ", ")
		}
		views = append(views, issueView{
			BoatID:   boat.ID,
			BoatName: boat.Name,
			Summary:  summary,
			Defects:  boat.Defects,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// handleDefectsForBoat returns the open defect aggregate for one boat.
func (c *Controller) handleDefectsForBoat(w http.ResponseWriter, r *http.Request) {
	boatID := r.URL.Query().Get("boat")
	if boatID == "" {
		http.Error(w, "boat required", http.StatusBadRequest)
		return
	}
	defects, err := c.dao.Store().LoadDefectsForBoat(r.Context(), boatID)
	if err != nil {
		c.logger.Error("Failed to load defects", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if defects == nil {
		http.Error(w, "no defects for boat", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, defects)
}

// handleEngineHours reports recorded engine hours. The sort query picks the
// ordering; totals=true collapses to per-reason totals.
func (c *Controller) handleEngineHours(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("totals") == "true" {
		totals, err := c.dao.EngineHoursTotalsByReason(r.Context())
		if err != nil {
			c.logger.Error("Failed to total engine hours", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, totals)
		return
	}

	var (
		hours any
		err   error
	)
	switch sortBy := r.URL.Query().Get("sort"); sortBy {
	case "", "boat":
		hours, err = c.dao.EngineHoursSortedByBoat(r.Context())
	case "reason":
		hours, err = c.dao.EngineHoursSortedByReason(r.Context())
	default:
		http.Error(w, fmt.Sprintf("unknown sort %q", sortBy), http.StatusBadRequest)
		return
	}
	if err != nil {
		c.logger.Error("Failed to list engine hours", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}
