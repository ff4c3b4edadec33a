package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"sitemap-console/pkg/console"
)

const maxBodyBytes = 1 << 20

// actionRequest is the body of every console mutation. Confirm answers
// every confirmation the action raises.
type actionRequest struct {
	Value      string `json:"value"`
	Enabled    *bool  `json:"enabled,omitempty"`
	Customized *bool  `json:"customized,omitempty"`
	Confirm    bool   `json:"confirm"`
}

// requestPrompter answers console prompts for one request and collects
// what the console said.
type requestPrompter struct {
	prompts []string
	alerts  []string
	confirm bool
}

func (p *requestPrompter) Confirm(message string) bool {
	p.prompts = append(p.prompts, message)
	return p.confirm
}

func (p *requestPrompter) Alert(message string) {
	p.alerts = append(p.alerts, message)
}

func decodeAction(w http.ResponseWriter, r *http.Request) (actionRequest, error) {
	var req actionRequest
	if r.Body == nil {
		return req, nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return req, nil
}

// act runs fn on the console session and answers with the state of page,
// or of the page on screen when page is empty. The state is reported even
// when fn fails so the caller sees which setting was refused.
func (s *Server) act(w http.ResponseWriter, r *http.Request, req actionRequest, page console.Page, fn func(*console.SiteSettings) error) {
	p := &requestPrompter{confirm: req.Confirm}
	var state *console.PageState
	err := s.session.Do(r.Context(), p, func(c *console.SiteSettings) error {
		fnErr := fn(c)
		target := page
		if target == "" {
			target = c.CurrentPage()
		}
		if c.Loaded() {
			if st, err := c.Snapshot(target); err == nil {
				state = &st
			}
		}
		return fnErr
	})
	if err != nil {
		s.writeConsoleError(w, err, p, state)
		return
	}
	s.writeJSON(w, http.StatusOK, ActionResponse{State: state, Alerts: p.alerts, Prompts: p.prompts})
}

func (s *Server) writeConsoleError(w http.ResponseWriter, err error, p *requestPrompter, state *console.PageState) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Console operation failed", "error", err)
	}
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Message: err.Error(),
		State:   state,
	}
	if p != nil {
		resp.Alerts = p.alerts
		resp.Prompts = p.prompts
	}
	s.writeJSON(w, status, resp)
}

func pageParam(r *http.Request) console.Page {
	return console.Page(r.PathValue("page"))
}

// handleSites handles GET /api/sites
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	var resp SitesResponse
	err := s.session.Do(r.Context(), nil, func(c *console.SiteSettings) error {
		resp.Current = c.CurrentSite().String()
		resp.Sites = c.Sites()
		return nil
	})
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleSelectSite handles POST /api/sites/{id}/select
func (s *Server) handleSelectSite(w http.ResponseWriter, r *http.Request) {
	id, err := console.ParseSiteID(r.PathValue("id"))
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	req, err := decodeAction(w, r)
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	s.act(w, r, req, "", func(c *console.SiteSettings) error {
		return c.SelectSite(id)
	})
}

// handleSiteEnabled handles PUT /api/sites/{id}/enabled
func (s *Server) handleSiteEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := console.ParseSiteID(r.PathValue("id"))
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	req, err := decodeAction(w, r)
	if err == nil && req.Enabled == nil {
		err = fmt.Errorf("%w: enabled is required", errBadRequest)
	}
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	s.act(w, r, req, console.PageSites, func(c *console.SiteSettings) error {
		return c.SetSiteEnabled(id, *req.Enabled)
	})
}

// handlePages handles GET /api/pages
func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	var resp PagesResponse
	err := s.session.Do(r.Context(), nil, func(c *console.SiteSettings) error {
		resp.Site = c.CurrentSite().String()
		resp.Pages = make([]PageSummary, 0, len(console.Pages))
		for _, p := range console.Pages {
			resp.Pages = append(resp.Pages, PageSummary{
				Page:       p,
				Customized: c.IsCustomized(p),
				Current:    p == c.CurrentPage(),
			})
		}
		return nil
	})
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handlePage handles GET /api/pages/{page}
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	var state console.PageState
	err := s.session.Do(r.Context(), nil, func(c *console.SiteSettings) error {
		if !c.Loaded() {
			return console.ErrNoDocument
		}
		st, err := c.Snapshot(page)
		state = st
		return err
	})
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// handleShowPage handles POST /api/pages/{page}/show
func (s *Server) handleShowPage(w http.ResponseWriter, r *http.Request) {
	s.pageAction(w, r, func(c *console.SiteSettings, page console.Page, _ actionRequest) error {
		return c.ShowPage(page)
	})
}

// handleReloadPage handles POST /api/pages/{page}/reload
func (s *Server) handleReloadPage(w http.ResponseWriter, r *http.Request) {
	s.pageAction(w, r, func(c *console.SiteSettings, page console.Page, _ actionRequest) error {
		if page != c.CurrentPage() {
			return fmt.Errorf("%w: %s", console.ErrNotOnScreen, page)
		}
		return c.ReloadCurPage()
	})
}

// handleRevertPage handles POST /api/pages/{page}/revert
func (s *Server) handleRevertPage(w http.ResponseWriter, r *http.Request) {
	s.pageAction(w, r, func(c *console.SiteSettings, page console.Page, _ actionRequest) error {
		return c.RevertToDefault(page)
	})
}

// handleCustomize handles PUT /api/pages/{page}/customize
func (s *Server) handleCustomize(w http.ResponseWriter, r *http.Request) {
	s.pageAction(w, r, func(c *console.SiteSettings, page console.Page, req actionRequest) error {
		if req.Customized == nil {
			return fmt.Errorf("%w: customized is required", errBadRequest)
		}
		return c.SetCustomized(page, *req.Customized)
	})
}

// handleInput handles PUT /api/pages/{page}/settings/{name}
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.pageAction(w, r, func(c *console.SiteSettings, page console.Page, req actionRequest) error {
		return c.Input(page, name, req.Value)
	})
}

// handleRevertSetting handles POST /api/pages/{page}/settings/{name}/revert
func (s *Server) handleRevertSetting(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.pageAction(w, r, func(c *console.SiteSettings, page console.Page, _ actionRequest) error {
		return c.RevertSetting(page, name)
	})
}

// handleAddItem handles POST /api/pages/{page}/lists/{name}/items
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.pageAction(w, r, func(c *console.SiteSettings, page console.Page, req actionRequest) error {
		return c.AddItem(page, name, req.Value)
	})
}

// handleDeleteItem handles DELETE /api/pages/{page}/lists/{name}/items/{index}
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.writeConsoleError(w, fmt.Errorf("%w: index %q", errBadRequest, r.PathValue("index")), nil, nil)
		return
	}
	s.pageAction(w, r, func(c *console.SiteSettings, page console.Page, _ actionRequest) error {
		return c.DeleteItem(page, name, index)
	})
}

func (s *Server) pageAction(w http.ResponseWriter, r *http.Request, fn func(*console.SiteSettings, console.Page, actionRequest) error) {
	page := pageParam(r)
	req, err := decodeAction(w, r)
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	s.act(w, r, req, page, func(c *console.SiteSettings) error {
		if !c.Loaded() {
			return console.ErrNoDocument
		}
		return fn(c, page, req)
	})
}
