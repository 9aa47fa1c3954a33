package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"boathouse/internal/dao"
	"boathouse/internal/models"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleCheckOutBoat(t *testing.T) {
	c, db := newTestController(t)
	ctx := context.Background()

	person := models.NewPerson("p1", "Jane", "Smith", 4, 12, 1990)
	if err := db.SavePerson(ctx, person); err != nil {
		t.Fatalf("Failed to save person: %v", err)
	}

	rec := postJSON(t, c.handleCheckOutBoat, "/api/check-out-boat",
		checkOutRequest{Boat: "2", Person: "p1", Reason: "Fuel"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	boat, err := db.GetBoatByID(ctx, "2")
	if err != nil {
		t.Fatalf("Failed to get boat: %v", err)
	}
	if boat.IsAvailable {
		t.Error("Expected boat 2 to be unavailable")
	}
	if boat.CheckedOutTo != "p1" || boat.CheckOutReason != "Fuel" {
		t.Errorf("Unexpected checkout markers: %+v", boat)
	}

	// The same boat again is a conflict, not a silent overwrite.
	rec = postJSON(t, c.handleCheckOutBoat, "/api/check-out-boat",
		checkOutRequest{Boat: "2"})
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", rec.Code)
	}

	rec = postJSON(t, c.handleCheckOutBoat, "/api/check-out-boat", checkOutRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing boat, got %d", rec.Code)
	}
}

func TestHandleCheckInBoat(t *testing.T) {
	c, db := newTestController(t)
	ctx := context.Background()

	if _, err := c.dao.CheckOutBoat(ctx, "1", nil, "Maintenance"); err != nil {
		t.Fatalf("CheckOutBoat failed: %v", err)
	}

	rec := postJSON(t, c.handleCheckInBoat, "/api/check-in-boat", checkInRequest{
		Boat:    "1",
		Defects: []dao.SubmittedDefect{{TypeID: 1, AdditionalInfo: "won't start"}},
		Hours:   2.5,
		Reason:  "Maintenance",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	boat, err := db.GetBoatByID(ctx, "1")
	if err != nil {
		t.Fatalf("Failed to get boat: %v", err)
	}
	if !boat.IsAvailable {
		t.Error("Expected boat 1 back in the fleet")
	}

	defects, err := db.LoadDefectsForBoat(ctx, "1")
	if err != nil {
		t.Fatalf("Failed to load defects: %v", err)
	}
	if defects == nil || len(defects.Reported) != 1 {
		t.Fatalf("Expected 1 reported defect, got %+v", defects)
	}

	hours, err := db.GetEngineHoursByBoat(ctx, "1")
	if err != nil {
		t.Fatalf("Failed to load engine hours: %v", err)
	}
	if len(hours) != 1 || hours[0].Hours != 2.5 {
		t.Errorf("Unexpected engine hours: %+v", hours)
	}

	rec = postJSON(t, c.handleCheckInBoat, "/api/check-in-boat", checkInRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing boat, got %d", rec.Code)
	}
}

func TestRouter_CheckOutBoatRoute(t *testing.T) {
	c, db := newTestController(t)

	payload, _ := json.Marshal(checkOutRequest{Boat: "3"})
	req := httptest.NewRequest(http.MethodPost, "/api/check-out-boat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	boat, err := db.GetBoatByID(context.Background(), "3")
	if err != nil {
		t.Fatalf("Failed to get boat: %v", err)
	}
	if boat.IsAvailable {
		t.Error("Expected boat 3 to be unavailable")
	}
}

func TestHandleClearDefect_ConfirmationLookup(t *testing.T) {
	c, db := newTestController(t)
	ctx := context.Background()

	if _, err := c.dao.CheckInBoat(ctx, "1", []dao.SubmittedDefect{{TypeID: 3}}, 0, ""); err != nil {
		t.Fatalf("CheckInBoat failed: %v", err)
	}
	defects, err := db.LoadDefectsForBoat(ctx, "1")
	if err != nil || defects == nil || len(defects.Reported) != 1 {
		t.Fatalf("Expected 1 reported defect, got %+v (err %v)", defects, err)
	}
	defectID := defects.Reported[0].DefectID

	postForm := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/defects/clear",
			strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		c.handleClearDefect(rec, req)
		return rec
	}

	// Without confirm the handler echoes the matching report back.
	rec := postForm(url.Values{"boat": {"1"}, "defect": {defectID}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var preview struct {
		Status string                `json:"status"`
		Defect models.ReportedDefect `json:"defect"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if preview.Status != "confirm" || preview.Defect.DefectID != defectID {
		t.Errorf("Unexpected preview %+v", preview)
	}

	rec = postForm(url.Values{"boat": {"1"}, "defect": {"no-such-defect"}})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown defect, got %d", rec.Code)
	}

	rec = postForm(url.Values{"boat": {"1"}, "defect": {defectID}, "confirm": {"true"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on confirm, got %d: %s", rec.Code, rec.Body.String())
	}
	defects, err = db.LoadDefectsForBoat(ctx, "1")
	if err != nil {
		t.Fatalf("Failed to load defects: %v", err)
	}
	if defects != nil {
		t.Errorf("Expected aggregate deleted, got %+v", defects)
	}
}
