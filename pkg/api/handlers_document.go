package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"sitemap-console/pkg/console"
	"sitemap-console/pkg/storage"
	"sitemap-console/pkg/xmltree"
)

// handleSave handles POST /api/save. The page on screen is validated and
// written into the document, the document is submitted to the source and
// a revision is recorded.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAction(w, r)
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}

	p := &requestPrompter{confirm: req.Confirm}
	var state *console.PageState
	var rev *storage.Revision
	err = s.session.Do(r.Context(), p, func(c *console.SiteSettings) error {
		if !c.Loaded() {
			return console.ErrNoDocument
		}
		saveErr := c.Save()
		if st, err := c.Snapshot(c.CurrentPage()); err == nil {
			state = &st
		}
		if saveErr != nil {
			return saveErr
		}

		xml, err := c.GetXMLString()
		if err != nil {
			return err
		}
		data := []byte(xml)
		if s.source != nil {
			if err := s.source.Submit(r.Context(), data); err != nil {
				return fmt.Errorf("submit document: %w", err)
			}
		}
		rev = s.recordRevision(r.Context(), &storage.Revision{
			Site:     c.CurrentSite().String(),
			Page:     string(c.CurrentPage()),
			Author:   authorFromContext(r.Context()),
			Document: data,
		})
		return nil
	})
	if err != nil {
		s.writeConsoleError(w, err, p, state)
		return
	}

	resp := ActionResponse{State: state, Alerts: p.alerts, Prompts: p.prompts}
	if rev != nil {
		summary := convertRevision(rev)
		resp.Revision = &summary
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// recordRevision stores rev and trims old revisions. Storage failures are
// logged; the document has already been submitted at this point.
func (s *Server) recordRevision(ctx context.Context, rev *storage.Revision) *storage.Revision {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	id, err := s.storage.SaveRevision(ctx, rev)
	if err != nil {
		s.logger.Warn("Failed to record revision", "error", err)
		return nil
	}
	if id == 0 {
		return nil
	}
	if removed, err := s.storage.Cleanup(ctx, 0); err != nil {
		s.logger.Warn("Failed to trim revisions", "error", err)
	} else if removed > 0 {
		s.logger.Debug("Trimmed old revisions", "removed", removed)
	}
	return rev
}

// handleReload handles POST /api/reload: the document is read again from
// the source and replaces the one in the console.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAction(w, r)
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	if s.source == nil {
		s.writeConsoleError(w, errNoSource, nil, nil)
		return
	}

	data, err := s.source.Load(r.Context())
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	s.replaceDocument(w, r, req, data, nil)
}

// replaceDocument parses data and hands it to the console. Unsaved changes
// on screen must be discarded first. after runs inside the same command
// once the console holds the new document.
func (s *Server) replaceDocument(w http.ResponseWriter, r *http.Request, req actionRequest, data []byte, after func(*console.SiteSettings) error) {
	doc, err := xmltree.Parse(data)
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}

	s.act(w, r, req, "", func(c *console.SiteSettings) error {
		if err := c.ReplaceData(doc); err != nil {
			return err
		}
		s.metrics.DocumentReloaded()
		if after != nil {
			return after(c)
		}
		return nil
	})
}

// handleDocument handles GET /api/document
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	var xml string
	err := s.session.Do(r.Context(), nil, func(c *console.SiteSettings) error {
		var err error
		xml, err = c.GetXMLString()
		return err
	})
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(xml)); err != nil {
		s.logger.Error("Failed to write document", "error", err)
	}
}

// handleRevisions handles GET /api/revisions
func (s *Server) handleRevisions(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 50)
	offset := parseIntParam(r, "offset", 0)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	revisions, err := s.storage.ListRevisions(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list revisions", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve revisions")
		return
	}

	resp := RevisionsResponse{
		Revisions: make([]RevisionResponse, 0, len(revisions)),
		Limit:     limit,
		Offset:    offset,
	}
	for _, rev := range revisions {
		resp.Revisions = append(resp.Revisions, convertRevision(rev))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleRevision handles GET /api/revisions/{id}. The stored document is
// the body; its metadata travels in headers.
func (s *Server) handleRevision(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.lookupRevision(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("X-Revision-Id", strconv.FormatInt(rev.ID, 10))
	w.Header().Set("X-Revision-Checksum", rev.Checksum)
	w.Header().Set("Last-Modified", rev.CreatedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(rev.Document); err != nil {
		s.logger.Error("Failed to write revision", "error", err)
	}
}

// handleRestoreRevision handles POST /api/revisions/{id}/restore: the
// stored document replaces the console's and is submitted to the source.
func (s *Server) handleRestoreRevision(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAction(w, r)
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return
	}
	rev, ok := s.lookupRevision(w, r)
	if !ok {
		return
	}

	s.replaceDocument(w, r, req, rev.Document, func(c *console.SiteSettings) error {
		if s.source != nil {
			if err := s.source.Submit(r.Context(), rev.Document); err != nil {
				return fmt.Errorf("submit document: %w", err)
			}
		}
		s.recordRevision(r.Context(), &storage.Revision{
			Site:     c.CurrentSite().String(),
			Page:     "restore:" + strconv.FormatInt(rev.ID, 10),
			Author:   authorFromContext(r.Context()),
			Document: rev.Document,
		})
		s.logger.Info("Revision restored", "revision", rev.ID)
		return nil
	})
}

func (s *Server) lookupRevision(w http.ResponseWriter, r *http.Request) (*storage.Revision, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		s.writeError(w, http.StatusBadRequest, "Invalid revision id")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rev, err := s.storage.GetRevision(ctx, id)
	if err != nil {
		s.writeConsoleError(w, err, nil, nil)
		return nil, false
	}
	return rev, true
}

func parseIntParam(r *http.Request, name string, dflt int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return dflt
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return dflt
	}
	return n
}
