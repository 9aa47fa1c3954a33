package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// NavigationResult is the outcome of one wizard step: the page to render,
// its title, and its view model.
type NavigationResult struct {
	Page  Page      `json:"page"`
	Title string    `json:"title"`
	View  ViewModel `json:"view"`
}

// Navigate runs one step of the wizard: process the current page's form,
// pick the target page in the session's graph, and prepare the target's
// view. It mutates wctx; the caller is responsible for persisting it.
//
// Form processing runs only on next; backing up must not re-apply a
// page's side effects. A process handler may veto the advance, in which
// case the current page is re-rendered with its freshly prepared view.
func (c *Controller) Navigate(ctx context.Context, wctx *WizardContext, action string, form url.Values) (*NavigationResult, error) {
	current := wctx.CurrentPage()

	var target Page
	if action == ActionPrevious {
		target = PrevPage(current, wctx.CheckIn)
	} else {
		advance, err := c.processForm(ctx, wctx, current, form)
		if err != nil {
			return nil, err
		}
		// processForm may have reset an unrecognized page.
		current = wctx.CurrentPage()

		if !advance {
			target = current
		} else {
			target = NextPage(current, wctx.CheckIn)
			// Answering "no" to the defects question skips the fault
			// report.
			if current == PageAreThereDefects && form.Get("defects") == "no" {
				target = PageCheckInComplete
			}
		}
	}

	wctx.PageBody = target
	view, err := c.prepareNextPage(ctx, wctx, target, form)
	if err != nil {
		return nil, err
	}
	return &NavigationResult{
		Page:  target,
		Title: pageTitle(action, target),
		View:  view,
	}, nil
}

func pageTitle(action string, target Page) string {
	word := "Next"
	if action == ActionPrevious {
		word = "Previous"
	}
	return fmt.Sprintf("%s Page: %s", word, target)
}

// handleNavigate is the single wizard endpoint. The browser posts the
// current page's form plus an action; the response carries the target
// page's view model.
func (c *Controller) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	session, err := c.sessions.Get(r, sessionName)
	if err != nil {
		// A stale or corrupt cookie starts a fresh session.
		c.logger.Warn("Failed to decode session, starting fresh", zap.Error(err))
	}
	wctx, ok := session.Values[sessionWizardKey].(*WizardContext)
	if !ok {
		wctx = &WizardContext{}
	}

	action := r.PostForm.Get("action")
	if action != ActionPrevious {
		action = ActionNext
	}

	result, err := c.Navigate(r.Context(), wctx, action, r.PostForm)
	if err != nil {
		c.logger.Error("Navigation failed",
			zap.String("page", string(wctx.CurrentPage())), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	session.Values[sessionWizardKey] = wctx
	if err := session.Save(r, w); err != nil {
		c.logger.Error("Failed to save session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCurrentPage renders the session's current page without processing
// a form, used on first load and refresh.
func (c *Controller) handleCurrentPage(w http.ResponseWriter, r *http.Request) {
	session, _ := c.sessions.Get(r, sessionName)
	wctx, ok := session.Values[sessionWizardKey].(*WizardContext)
	if !ok {
		wctx = &WizardContext{}
	}

	target := wctx.CurrentPage()
	// The finalization pages persist state when prepared; a refresh there
	// must not flush twice, so it starts a new run instead.
	if target == PageCheckedOut || target == PageCheckInComplete {
		wctx.ResetRun()
		target = Page1
		wctx.PageBody = target
	}
	view, err := c.prepareNextPage(r.Context(), wctx, target, url.Values{})
	if err != nil {
		c.logger.Error("Failed to prepare page",
			zap.String("page", string(target)), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	session.Values[sessionWizardKey] = wctx
	if err := session.Save(r, w); err != nil {
		c.logger.Error("Failed to save session", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, &NavigationResult{
		Page:  target,
		Title: fmt.Sprintf("Page: %s", target),
		View:  view,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
