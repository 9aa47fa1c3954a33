package web

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"boathouse/internal/models"
)

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func okResponse(message string) statusResponse {
	return statusResponse{Status: "ok", Message: message}
}

// adminEmail returns the logged-in admin's email from the session, or ""
// when the request is unauthenticated.
func (c *Controller) adminEmail(r *http.Request) string {
	session, _ := c.sessions.Get(r, sessionName)
	wctx, ok := session.Values[sessionWizardKey].(*WizardContext)
	if !ok {
		return ""
	}
	return wctx.AdminEmail
}

// handleAdminLogin validates credentials and marks the session as an admin
// session. Bad email and bad password are indistinguishable to the caller.
func (c *Controller) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	admin, err := c.dao.Store().GetAdminByEmail(r.Context(), email)
	if err != nil {
		c.logger.Error("Failed to load admin", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	valid := false
	if admin != nil {
		valid, err = admin.ValidatePassword(password)
		if err != nil {
			c.logger.Error("Failed to validate password", zap.String("email", email), zap.Error(err))
		}
	}
	if !valid {
		c.logger.Warn("Rejected admin login", zap.String("email", email))
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	session, _ := c.sessions.Get(r, sessionName)
	wctx, ok := session.Values[sessionWizardKey].(*WizardContext)
	if !ok {
		wctx = &WizardContext{}
	}
	wctx.AdminEmail = admin.EmailAddress
	session.Values[sessionWizardKey] = wctx
	if err := session.Save(r, w); err != nil {
		c.logger.Error("Failed to save session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	c.logger.Info("Admin logged in", zap.String("email", admin.EmailAddress))
	writeJSON(w, http.StatusOK, okResponse("logged in"))
}

func (c *Controller) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := c.sessions.Get(r, sessionName)
	if wctx, ok := session.Values[sessionWizardKey].(*WizardContext); ok {
		wctx.AdminEmail = ""
		session.Values[sessionWizardKey] = wctx
	}
	if err := session.Save(r, w); err != nil {
		c.logger.Error("Failed to save session", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, okResponse("logged out"))
}

// handleAdminHome summarizes fleet state for the admin landing page.
func (c *Controller) handleAdminHome(w http.ResponseWriter, r *http.Request) {
	boats, err := c.dao.Store().ListBoats(r.Context())
	if err != nil {
		c.logger.Error("Failed to list boats", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	checkedOut := 0
	for _, b := range boats {
		if !b.IsAvailable {
			checkedOut++
		}
	}
	issues, err := c.dao.BoatsWithIssues(r.Context())
	if err != nil {
		c.logger.Error("Failed to list boats with issues", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"admin":           c.adminEmail(r),
		"boats":           len(boats),
		"checkedOut":      checkedOut,
		"boatsWithIssues": len(issues),
	})
}

func (c *Controller) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := c.dao.Store().ListAdmins(r.Context())
	if err != nil {
		c.logger.Error("Failed to list admins", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	type adminView struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	views := make([]adminView, 0, len(admins))
	for _, a := range admins {
		views = append(views, adminView{Email: a.EmailAddress, FirstName: a.FirstName, LastName: a.LastName})
	}
	writeJSON(w, http.StatusOK, views)
}

func (c *Controller) handleAddAdmin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	if email == "" {
		http.Error(w, "email required", http.StatusBadRequest)
		return
	}
	admin := &models.AdminPerson{
		EmailAddress: email,
		FirstName:    r.PostForm.Get("firstName"),
		LastName:     r.PostForm.Get("lastName"),
	}
	if password := r.PostForm.Get("password"); password != "" {
		if err := admin.SetPassword(password); err != nil {
			c.logger.Error("Failed to hash password", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	if err := c.dao.Store().SaveAdmin(r.Context(), admin); err != nil {
		c.logger.Error("Failed to save admin", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	c.logger.Info("Admin user added", zap.String("email", email))
	writeJSON(w, http.StatusOK, okResponse("admin added"))
}

func (c *Controller) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	if email == "" {
		http.Error(w, "email required", http.StatusBadRequest)
		return
	}
	if email == c.adminEmail(r) {
		http.Error(w, "cannot delete yourself", http.StatusBadRequest)
		return
	}
	if err := c.dao.Store().DeleteAdmin(r.Context(), email); err != nil {
		c.logger.Error("Failed to delete admin", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	c.logger.Info("Admin user deleted", zap.String("email", email))
	writeJSON(w, http.StatusOK, okResponse("admin deleted"))
}

// handleSetPassword changes an existing admin's password.
func (c *Controller) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}
	admin, err := c.dao.Store().GetAdminByEmail(r.Context(), email)
	if err != nil {
		c.logger.Error("Failed to load admin", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if admin == nil {
		http.Error(w, "admin not found", http.StatusNotFound)
		return
	}
	if err := admin.SetPassword(password); err != nil {
		c.logger.Error("Failed to hash password", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := c.dao.Store().SaveAdmin(r.Context(), admin); err != nil {
		c.logger.Error("Failed to save admin", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, okResponse("password updated"))
}

// handleUploadPersons ingests the membership list as CSV: one row per
// person with columns id, firstName, lastName, dob (dd/mm/yyyy, year
// optional). A header row is skipped when present.
func (c *Controller) handleUploadPersons(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	imported := 0
	for lineNo := 1; ; lineNo++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.logger.Warn("Skipping malformed CSV row", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		if len(record) < 4 {
			c.logger.Warn("Skipping short CSV row", zap.Int("line", lineNo))
			continue
		}
		if lineNo == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "id") {
			continue
		}
		day, month, year, ok := parseDOB(record[3])
		if !ok {
			c.logger.Warn("Skipping row with unparseable date of birth",
				zap.Int("line", lineNo), zap.String("dob", record[3]))
			continue
		}
		person := models.NewPerson(
			strings.TrimSpace(record[0]),
			strings.TrimSpace(record[1]),
			strings.TrimSpace(record[2]),
			month, day, year,
		)
		if person.ID == "" {
			c.logger.Warn("Skipping row without id", zap.Int("line", lineNo))
			continue
		}
		if err := c.dao.Store().SavePerson(r.Context(), person); err != nil {
			c.logger.Error("Failed to save person", zap.String("id", person.ID), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		imported++
	}

	c.logger.Info("Membership list uploaded", zap.Int("imported", imported))
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "imported": imported})
}

// parseDOB accepts dd/mm/yyyy or dd/mm, returning year 0 when absent.
func parseDOB(raw string) (day, month, year int, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) < 2 {
		return 0, 0, 0, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, false
	}
	if len(parts) >= 3 && parts[2] != "" {
		year, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, 0, false
		}
	}
	return day, month, year, true
}

func (c *Controller) handleDeleteAllUsers(w http.ResponseWriter, r *http.Request) {
	if err := c.dao.Store().DeleteAllPersons(r.Context()); err != nil {
		c.logger.Error("Failed to delete persons", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	c.logger.Info("All club members deleted", zap.String("admin", c.adminEmail(r)))
	writeJSON(w, http.StatusOK, okResponse("all users deleted"))
}

func (c *Controller) handleCheckInAll(w http.ResponseWriter, r *http.Request) {
	if err := c.dao.CheckInAllBoats(r.Context()); err != nil {
		c.logger.Error("Failed to check in all boats", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	c.logger.Info("All boats checked in", zap.String("admin", c.adminEmail(r)))
	writeJSON(w, http.StatusOK, okResponse("all boats checked in"))
}

// handleClearDefect removes one reported defect from a boat. Without
// confirm=true it only describes what would be cleared.
func (c *Controller) handleClearDefect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	boatID := r.PostForm.Get("boat")
	defectID := r.PostForm.Get("defect")
	if boatID == "" || defectID == "" {
		http.Error(w, "boat and defect required", http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("confirm") != "true" {
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
		for _, report := range defects.Reported {
			if report.DefectID == defectID {
				writeJSON(w, http.StatusOK, map[string]any{
					"status": "confirm",
					"defect": report,
				})
				return
			}
		}
		http.Error(w, "defect not found", http.StatusNotFound)
		return
	}

	cleared, err := c.dao.ClearDefect(r.Context(), boatID, defectID)
	if err != nil {
		c.logger.Error("Failed to clear defect", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !cleared {
		http.Error(w, "defect not found", http.StatusNotFound)
		return
	}
	c.logger.Info("Defect cleared",
		zap.String("boat_id", boatID), zap.String("defect_id", defectID),
		zap.String("admin", c.adminEmail(r)))
	writeJSON(w, http.StatusOK, okResponse("defect cleared"))
}

func (c *Controller) handleClearAllFaults(w http.ResponseWriter, r *http.Request) {
	if err := c.dao.ClearAllFaults(r.Context()); err != nil {
		c.logger.Error("Failed to clear all faults", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	c.logger.Info("All faults cleared", zap.String("admin", c.adminEmail(r)))
	writeJSON(w, http.StatusOK, okResponse("all faults cleared"))
}

// requireAdmin gates a handler behind an authenticated admin session.
func (c *Controller) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c.adminEmail(r) == "" {
			http.Error(w, "admin login required", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
