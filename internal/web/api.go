package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"boathouse/internal/dao"
	"boathouse/internal/models"
)

// handleCheckPerson looks club members up by last-name initial and date of
// birth. A year query narrows the match; without one any year matches.
func (c *Controller) handleCheckPerson(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lastInitial := strings.TrimSpace(query.Get("lastInitial"))
	day, dayErr := strconv.Atoi(query.Get("day"))
	month, monthErr := strconv.Atoi(query.Get("month"))
	if lastInitial == "" || dayErr != nil || monthErr != nil {
		http.Error(w, "lastInitial, day and month required", http.StatusBadRequest)
		return
	}
	year := 0
	if raw := query.Get("year"); raw != "" {
		var err error
		if year, err = strconv.Atoi(raw); err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
	}

	persons, err := c.dao.Store().FindPersonsBySearchKey(r.Context(), lastInitial, day, month, year)
	if err != nil {
		c.logger.Error("Failed to search persons", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, persons)
}

func (c *Controller) handleAvailableBoats(w http.ResponseWriter, r *http.Request) {
	boats, err := c.dao.Store().ListAvailableBoats(r.Context())
	if err != nil {
		c.logger.Error("Failed to list available boats", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, boats)
}

func (c *Controller) handleCheckedOutBoats(w http.ResponseWriter, r *http.Request) {
	boats, err := c.dao.Store().ListCheckedOutBoats(r.Context())
	if err != nil {
		c.logger.Error("Failed to list checked out boats", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, boats)
}

// handleDefectTypes returns the catalog of reportable defect types.
func (c *Controller) handleDefectTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.dao.PossibleDefects())
}

type checkOutRequest struct {
	Boat   string `json:"boat"`
	Person string `json:"person,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// handleCheckOutBoat checks a boat out in one call, outside the wizard flow.
// The person field is a member id; an unknown or absent id checks the boat
// out without a holder, as the kiosk does.
func (c *Controller) handleCheckOutBoat(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Boat == "" {
		http.Error(w, "boat required", http.StatusBadRequest)
		return
	}

	var person *models.Person
	if req.Person != "" {
		var err error
		person, err = c.dao.Store().GetPersonByID(r.Context(), req.Person)
		if err != nil {
			c.logger.Error("Failed to load person", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	ok, err := c.dao.CheckOutBoat(r.Context(), req.Boat, person, req.Reason)
	if err != nil {
		c.logger.Error("Failed to check out boat", zap.String("boat", req.Boat), zap.Error(err))
		http.Error(w, "failed to check out boat", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "boat is not available", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, okResponse("Boat checked out successfully"))
}

type checkInRequest struct {
	Boat    string                `json:"boat"`
	Defects []dao.SubmittedDefect `json:"defects,omitempty"`
	Hours   float64               `json:"hours,omitempty"`
	Reason  string                `json:"reason,omitempty"`
}

// handleCheckInBoat checks a boat back in: defects are merged into the
// boat's open record, the engine hours are logged, and the boat returns to
// the available fleet.
func (c *Controller) handleCheckInBoat(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Boat == "" {
		http.Error(w, "boat required", http.StatusBadRequest)
		return
	}

	boat, err := c.dao.CheckInBoat(r.Context(), req.Boat, req.Defects, req.Hours, req.Reason)
	if err != nil {
		c.logger.Error("Failed to check in boat", zap.String("boat", req.Boat), zap.Error(err))
		http.Error(w, "failed to check in boat", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, okResponse(boat.Name+" checked in successfully"))
}
