package web

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// Router assembles the full HTTP surface: the wizard endpoint, the public
// API, and the CSRF-protected admin area.
func (c *Controller) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", c.handleCurrentPage)
	mux.HandleFunc("POST /navigate", c.handleNavigate)

	mux.HandleFunc("GET /api/check-person", c.handleCheckPerson)
	mux.HandleFunc("GET /api/boats/available", c.handleAvailableBoats)
	mux.HandleFunc("GET /api/boats/checked-out", c.handleCheckedOutBoats)
	mux.HandleFunc("GET /api/defect-types", c.handleDefectTypes)
	mux.HandleFunc("POST /api/check-out-boat", c.handleCheckOutBoat)
	mux.HandleFunc("POST /api/check-in-boat", c.handleCheckInBoat)

	admin := http.NewServeMux()
	admin.HandleFunc("POST /admin/login", c.handleAdminLogin)
	admin.HandleFunc("POST /admin/logout", c.handleAdminLogout)
	admin.HandleFunc("GET /admin/home", c.requireAdmin(c.handleAdminHome))
	admin.HandleFunc("GET /admin/users", c.requireAdmin(c.handleListAdmins))
	admin.HandleFunc("POST /admin/users/add", c.requireAdmin(c.handleAddAdmin))
	admin.HandleFunc("POST /admin/users/delete", c.requireAdmin(c.handleDeleteAdmin))
	admin.HandleFunc("POST /admin/users/password", c.requireAdmin(c.handleSetPassword))
	admin.HandleFunc("POST /admin/members/upload", c.requireAdmin(c.handleUploadPersons))
	admin.HandleFunc("POST /admin/members/delete-all", c.requireAdmin(c.handleDeleteAllUsers))
	admin.HandleFunc("POST /admin/boats/check-in-all", c.requireAdmin(c.handleCheckInAll))
	admin.HandleFunc("POST /admin/defects/clear", c.requireAdmin(c.handleClearDefect))
	admin.HandleFunc("POST /admin/defects/clear-all", c.requireAdmin(c.handleClearAllFaults))
	admin.HandleFunc("GET /admin/reports/log.csv", c.requireAdmin(c.handleLogReport))
	admin.HandleFunc("GET /admin/reports/issues", c.requireAdmin(c.handleBoatsWithIssues))
	admin.HandleFunc("GET /admin/reports/defects", c.requireAdmin(c.handleDefectsForBoat))
	admin.HandleFunc("GET /admin/reports/engine-hours", c.requireAdmin(c.handleEngineHours))

	protect := csrf.Protect(c.cfg.CSRFKey,
		csrf.Secure(c.cfg.CookieSecure),
		csrf.Path("/"),
	)
	mux.Handle("/admin/", protect(admin))

	return c.withRecovery(c.withLogging(mux))
}
