package web

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"boathouse/internal/config"
	"boathouse/internal/dao"
	"boathouse/internal/notify"
)

const sessionName = "boathouse-session"
const sessionWizardKey = "wizard"

// Controller orchestrates wizard navigation and serves the admin and API
// surfaces. One instance handles all requests; per-user state lives in the
// session's WizardContext.
type Controller struct {
	dao      *dao.DAO
	cfg      *config.Config
	notifier *notify.Notifier
	sessions *sessions.CookieStore
	logger   *zap.Logger

	process map[Page]processFunc
	prepare map[Page]prepareFunc
	now     func() time.Time
}

// NewController wires the navigation controller and its dispatch tables.
func NewController(d *dao.DAO, cfg *config.Config, notifier *notify.Notifier, logger *zap.Logger) *Controller {
	store := sessions.NewCookieStore(cfg.SessionKey)
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.CookieSecure
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Path = "/"

	c := &Controller{
		dao:      d,
		cfg:      cfg,
		notifier: notifier,
		sessions: store,
		logger:   logger,
		now:      time.Now,
	}
	c.process = map[Page]processFunc{
		Page1:                    c.processPage1,
		PageSelectBoatToCheckout: c.processBoatSelection,
		PageWhoAreYou:            c.processWhoAreYou,
		PageReasonForCheckout:    c.processReasonForCheckout,
		PageStartCheckIn:         c.processStartCheckIn,
		PageRecordEngineHours:    c.processRecordEngineHours,
		PageReportFault:          c.processReportFault,
	}
	c.prepare = map[Page]prepareFunc{
		Page1:                    c.preparePage1,
		PageSelectBoatToCheckout: c.prepareSelectBoat,
		PageWhoAreYou:            c.prepareWhoAreYou,
		PageReasonForCheckout:    c.prepareReason,
		PageCheckedOut:           c.prepareCheckedOut,
		PageStartCheckIn:         c.prepareStartCheckIn,
		PageCheckInComplete:      c.prepareCheckInComplete,
	}
	return c
}
