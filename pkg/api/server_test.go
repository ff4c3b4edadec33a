package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sitemap-console/pkg/config"
	"sitemap-console/pkg/console"
	"sitemap-console/pkg/document"
	"sitemap-console/pkg/setting"
	"sitemap-console/pkg/storage"
	"sitemap-console/pkg/xmltree"
)

const testDoc = `<SitemapSettings>
  <AppSettings setting_port="8181" login_username="admin"/>
  <SiteSettings max_url_in_memory="1000" max_url_in_disk="100000">
    <WebSitemapSettings enabled="true" file_name="sitemap.xml"/>
    <IncludedUrls>
      <Url value="/" enabled="true"/>
    </IncludedUrls>
    <Site name="example" host="www.example.com"/>
    <Site name="other" host="other.example.com" max_url_in_memory="500" enabled="false"/>
  </SiteSettings>
</SitemapSettings>`

type testServer struct {
	server  *Server
	source  *document.FileSource
	storage *storage.SQLiteStorage
}

func newTestServer(t *testing.T, load bool) *testServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sitemap_settings.xml")
	if err := os.WriteFile(path, []byte(testDoc), 0644); err != nil {
		t.Fatal(err)
	}
	source := document.NewFileSource(path)

	c, err := console.New(console.Options{Generation: console.Trunk, Logger: testLogger()})
	if err != nil {
		t.Fatalf("console.New() error = %v", err)
	}
	if load {
		data, err := source.Load(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		doc, err := xmltree.Parse(data)
		if err != nil {
			t.Fatal(err)
		}
		if err := c.SetData(doc); err != nil {
			t.Fatal(err)
		}
	}

	session := console.NewSession(c)
	ctx, cancel := context.WithCancel(context.Background())
	go session.Run(ctx)
	t.Cleanup(cancel)

	store, err := storage.NewSQLiteStorage(&storage.Config{
		Enabled:   true,
		Backend:   storage.BackendSQLite,
		SQLite:    storage.SQLiteConfig{Path: ":memory:", BusyTimeout: 5000},
		Retention: 10,
	}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	server, err := New(&Config{
		Server:  config.ServerConfig{ListenAddress: ":0"},
		Session: session,
		Source:  source,
		Storage: store,
		Logger:  testLogger(),
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testServer{server: server, source: source, storage: store}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %s: %v", rr.Body.String(), err)
	}
	return v
}

func findSetting(st *console.PageState, name string) *console.SettingState {
	if st == nil {
		return nil
	}
	for i := range st.Settings {
		if st.Settings[i].Name == name {
			return &st.Settings[i]
		}
	}
	return nil
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, true)

	rr := ts.do(t, http.MethodGet, "/api/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	health := decode[HealthResponse](t, rr)
	if health.Status != "ok" || health.Version != "test" || health.TLS {
		t.Fatalf("unexpected health response: %+v", health)
	}

	if rr := ts.do(t, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", rr.Code)
	}

	rr = ts.do(t, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d: %s", rr.Code, rr.Body.String())
	}
	ready := decode[ReadinessResponse](t, rr)
	if ready.Checks["console"] != "ok" || ready.Checks["storage"] != "ok" {
		t.Fatalf("unexpected checks: %+v", ready.Checks)
	}
}

func TestReadyzWithoutDocument(t *testing.T) {
	ts := newTestServer(t, false)

	rr := ts.do(t, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}

	rr = ts.do(t, http.MethodGet, "/api/pages/site", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for page without document, got %d", rr.Code)
	}
}

func TestSitesAndSelection(t *testing.T) {
	ts := newTestServer(t, true)

	rr := ts.do(t, http.MethodGet, "/api/sites", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	sites := decode[SitesResponse](t, rr)
	if sites.Current != "global" || len(sites.Sites) != 2 {
		t.Fatalf("unexpected sites response: %+v", sites)
	}
	if sites.Sites[0].Name != "example" || sites.Sites[1].Enabled {
		t.Fatalf("unexpected site info: %+v", sites.Sites)
	}

	rr = ts.do(t, http.MethodPost, "/api/sites/1/select", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	action := decode[ActionResponse](t, rr)
	if action.State == nil || action.State.Site != "1" || !action.State.Customized {
		t.Fatalf("expected customized site 1 on screen, got %+v", action.State)
	}

	if rr := ts.do(t, http.MethodPost, "/api/sites/9/select", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown site, got %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/sites/abc/select", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed site, got %d", rr.Code)
	}
}

func TestEditSaveAndRevisions(t *testing.T) {
	ts := newTestServer(t, true)

	if rr := ts.do(t, http.MethodPost, "/api/sites/0/select", ""); rr.Code != http.StatusOK {
		t.Fatalf("select failed: %d", rr.Code)
	}

	rr := ts.do(t, http.MethodPut, "/api/pages/site/settings/max_url_in_memory", `{"value":"2000"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	action := decode[ActionResponse](t, rr)
	if !action.State.Dirty {
		t.Fatalf("expected dirty page after edit")
	}
	if s := findSetting(action.State, "max_url_in_memory"); s == nil || s.Value != "2000" || s.Inherited {
		t.Fatalf("unexpected setting state: %+v", s)
	}

	rr = ts.do(t, http.MethodPost, "/api/save", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from save, got %d: %s", rr.Code, rr.Body.String())
	}
	saved := decode[ActionResponse](t, rr)
	if saved.Revision == nil || saved.Revision.ID == 0 || saved.Revision.Site != "0" {
		t.Fatalf("expected a recorded revision, got %+v", saved.Revision)
	}

	data, err := os.ReadFile(ts.source.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `max_url_in_memory="2000"`) {
		t.Fatalf("expected submitted document to carry the edit, got %s", data)
	}

	rr = ts.do(t, http.MethodGet, "/api/revisions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	revisions := decode[RevisionsResponse](t, rr)
	if len(revisions.Revisions) != 1 || revisions.Revisions[0].Page != "site" {
		t.Fatalf("unexpected revisions: %+v", revisions)
	}

	rr = ts.do(t, http.MethodGet, "/api/revisions/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-Revision-Checksum") != storage.Checksum(data) {
		t.Fatalf("revision checksum does not match the submitted document")
	}

	if rr := ts.do(t, http.MethodGet, "/api/revisions/42", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing revision, got %d", rr.Code)
	}
}

func TestInvalidInputAndSave(t *testing.T) {
	ts := newTestServer(t, true)

	rr := ts.do(t, http.MethodPut, "/api/pages/site/settings/max_url_in_memory", `{"value":"lots"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if len(resp.Alerts) == 0 || resp.Alerts[0] != setting.MsgValidationFailed {
		t.Fatalf("expected validation alert, got %+v", resp.Alerts)
	}
	if s := findSetting(resp.State, "max_url_in_memory"); s == nil || s.Valid {
		t.Fatalf("expected invalid setting in state, got %+v", s)
	}

	rr = ts.do(t, http.MethodPost, "/api/save", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 from save, got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.State == nil || resp.State.Focused != "site.max_url_in_memory" {
		t.Fatalf("expected focus on the invalid setting, got %+v", resp.State)
	}

	revisions, err := ts.storage.ListRevisions(context.Background(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(revisions) != 0 {
		t.Fatalf("expected no revision after failed save, got %d", len(revisions))
	}
}

func TestNavigationNeedsConfirmation(t *testing.T) {
	ts := newTestServer(t, true)

	if rr := ts.do(t, http.MethodPut, "/api/pages/site/settings/max_url_in_memory", `{"value":"3000"}`); rr.Code != http.StatusOK {
		t.Fatalf("edit failed: %d", rr.Code)
	}

	rr := ts.do(t, http.MethodPost, "/api/pages/web/show", `{"confirm":false}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 when declining, got %d", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if len(resp.Prompts) != 1 || resp.Prompts[0] != console.MsgDiscardChanges {
		t.Fatalf("expected discard prompt, got %+v", resp.Prompts)
	}

	rr = ts.do(t, http.MethodPost, "/api/pages/web/show", `{"confirm":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when confirming, got %d", rr.Code)
	}
	if action := decode[ActionResponse](t, rr); action.State.Page != console.PageWeb {
		t.Fatalf("expected web page on screen, got %s", action.State.Page)
	}

	if rr := ts.do(t, http.MethodPost, "/api/pages/site/reload", ""); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 reloading a page not on screen, got %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/pages/nowhere/show", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown page, got %d", rr.Code)
	}
}

func TestEditOffScreenPageConflicts(t *testing.T) {
	ts := newTestServer(t, true)

	rr := ts.do(t, http.MethodPut, "/api/pages/web/settings/file_name", `{"value":"custom.xml"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 editing a page not on screen, got %d", rr.Code)
	}
	for _, path := range []string{
		"/api/pages/web/lists/NotifyUrls/items",
		"/api/pages/web/settings/file_name/revert",
	} {
		if rr := ts.do(t, http.MethodPost, path, `{"value":"http://ping.example.com/"}`); rr.Code != http.StatusConflict {
			t.Fatalf("%s: expected 409, got %d", path, rr.Code)
		}
	}
	if rr := ts.do(t, http.MethodPut, "/api/pages/web/customize", `{"customized":true}`); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 customizing a page not on screen, got %d", rr.Code)
	}

	rr = ts.do(t, http.MethodGet, "/api/pages/web", "")
	if s := findSetting(ptr(decode[console.PageState](t, rr)), "file_name"); s == nil || s.Value != "sitemap.xml" || s.Dirty {
		t.Fatalf("expected untouched web page, got %+v", s)
	}
}

func ptr[T any](v T) *T { return &v }

func TestCustomizeAndRevert(t *testing.T) {
	ts := newTestServer(t, true)
	if rr := ts.do(t, http.MethodPost, "/api/sites/1/select", ""); rr.Code != http.StatusOK {
		t.Fatalf("select failed: %d", rr.Code)
	}

	rr := ts.do(t, http.MethodPost, "/api/pages/site/revert", `{"confirm":false}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 when declining revert, got %d", rr.Code)
	}

	rr = ts.do(t, http.MethodPost, "/api/pages/site/revert", `{"confirm":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if action := decode[ActionResponse](t, rr); action.State.Customized {
		t.Fatalf("expected page to follow the global defaults after revert")
	}

	if rr := ts.do(t, http.MethodPut, "/api/pages/site/customize", `{}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without customized flag, got %d", rr.Code)
	}
	rr = ts.do(t, http.MethodPut, "/api/pages/site/customize", `{"customized":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if action := decode[ActionResponse](t, rr); !action.State.Customized {
		t.Fatalf("expected customized page")
	}
}

func TestRejectedInput(t *testing.T) {
	ts := newTestServer(t, true)

	if rr := ts.do(t, http.MethodPost, "/api/pages/app/show", ""); rr.Code != http.StatusOK {
		t.Fatalf("show app failed: %d", rr.Code)
	}
	rr := ts.do(t, http.MethodPut, "/api/pages/app/settings/remote_access", `{"value":"true"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for remote access over plain HTTP, got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); len(resp.Alerts) == 0 || resp.Alerts[0] != setting.MsgRemoteAccessBlocked {
		t.Fatalf("expected remote access alert, got %+v", resp.Alerts)
	}

	if rr := ts.do(t, http.MethodPut, "/api/pages/site/settings/nope", `{"value":"1"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown setting, got %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodPut, "/api/pages/site/settings/max_url_in_memory", `{"value":`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rr.Code)
	}
}

func TestListItems(t *testing.T) {
	ts := newTestServer(t, true)

	rr := ts.do(t, http.MethodPost, "/api/pages/site/lists/IncludedUrls/items", `{"value":"/news"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	list := findSetting(decode[ActionResponse](t, rr).State, "IncludedUrls")
	if list == nil || len(list.Items) != 2 {
		t.Fatalf("expected two list items, got %+v", list)
	}

	if rr := ts.do(t, http.MethodPost, "/api/pages/site/lists/IncludedUrls/items", `{"value":"/news"}`); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate item, got %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/pages/site/lists/max_url_in_memory/items", `{"value":"1"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-list setting, got %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodDelete, "/api/pages/site/lists/IncludedUrls/items/x", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed index, got %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodDelete, "/api/pages/site/lists/IncludedUrls/items/1", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting an item, got %d", rr.Code)
	}
}

func TestSiteEnabled(t *testing.T) {
	ts := newTestServer(t, true)

	if rr := ts.do(t, http.MethodPut, "/api/sites/1/enabled", `{"enabled":true}`); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 while the sites page is not on screen, got %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/pages/sites/show", ""); rr.Code != http.StatusOK {
		t.Fatalf("show sites failed: %d", rr.Code)
	}

	if rr := ts.do(t, http.MethodPut, "/api/sites/1/enabled", `{}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without enabled flag, got %d", rr.Code)
	}

	rr := ts.do(t, http.MethodPut, "/api/sites/1/enabled", `{"enabled":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if action := decode[ActionResponse](t, rr); action.State == nil || action.State.Page != console.PageSites {
		t.Fatalf("expected sites page state, got %+v", action.State)
	}
}

func TestPagesAndDocument(t *testing.T) {
	ts := newTestServer(t, true)

	rr := ts.do(t, http.MethodGet, "/api/pages", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	pages := decode[PagesResponse](t, rr)
	if len(pages.Pages) != len(console.Pages) {
		t.Fatalf("expected %d pages, got %d", len(console.Pages), len(pages.Pages))
	}

	rr = ts.do(t, http.MethodGet, "/api/pages/web", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if st := decode[console.PageState](t, rr); st.Page != console.PageWeb {
		t.Fatalf("unexpected page state: %+v", st)
	}

	rr = ts.do(t, http.MethodGet, "/api/document", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/xml") {
		t.Fatalf("expected XML content type, got %s", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), "<SitemapSettings>") {
		t.Fatalf("unexpected document body: %s", rr.Body.String())
	}
}

func TestReloadFromSource(t *testing.T) {
	ts := newTestServer(t, true)

	updated := strings.Replace(testDoc, `max_url_in_memory="1000"`, `max_url_in_memory="750"`, 1)
	if err := os.WriteFile(ts.source.Path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	rr := ts.do(t, http.MethodPost, "/api/reload", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if s := findSetting(decode[ActionResponse](t, rr).State, "max_url_in_memory"); s == nil || s.Value != "750" {
		t.Fatalf("expected reloaded value, got %+v", s)
	}

	if err := os.WriteFile(ts.source.Path, []byte("<broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if rr := ts.do(t, http.MethodPost, "/api/reload", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparsable document, got %d", rr.Code)
	}
}

func TestRestoreRevision(t *testing.T) {
	ts := newTestServer(t, true)

	if rr := ts.do(t, http.MethodPut, "/api/pages/site/settings/max_url_in_memory", `{"value":"4000"}`); rr.Code != http.StatusOK {
		t.Fatalf("edit failed: %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/save", ""); rr.Code != http.StatusOK {
		t.Fatalf("save failed: %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodPut, "/api/pages/site/settings/max_url_in_memory", `{"value":"5000"}`); rr.Code != http.StatusOK {
		t.Fatalf("edit failed: %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodPost, "/api/save", ""); rr.Code != http.StatusOK {
		t.Fatalf("save failed: %d", rr.Code)
	}

	rr := ts.do(t, http.MethodPost, "/api/revisions/1/restore", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if s := findSetting(decode[ActionResponse](t, rr).State, "max_url_in_memory"); s == nil || s.Value != "4000" {
		t.Fatalf("expected restored value, got %+v", s)
	}

	data, err := os.ReadFile(ts.source.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `max_url_in_memory="4000"`) {
		t.Fatalf("expected restored document on disk, got %s", data)
	}

	revisions, err := ts.storage.ListRevisions(context.Background(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(revisions) != 3 || revisions[0].Page != "restore:1" {
		t.Fatalf("expected restore to be recorded, got %+v", revisions)
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, true)

	rr := ts.do(t, http.MethodOptions, "/api/sites", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin without configured origins")
	}

	restricted := &Server{logger: testLogger(), corsOrigins: map[string]struct{}{"https://admin.example.com": {}}}
	handler := restricted.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for origin, want := range map[string]string{
		"https://admin.example.com": "https://admin.example.com",
		"https://evil.example.com":  "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/sites", nil)
		req.Header.Set("Origin", origin)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if got := res.Header().Get("Access-Control-Allow-Origin"); got != want {
			t.Fatalf("origin %s: expected %q, got %q", origin, want, got)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{setting.ErrValidationFailed, http.StatusBadRequest},
		{console.ErrUnknownPage, http.StatusNotFound},
		{storage.ErrNotFound, http.StatusNotFound},
		{setting.ErrInputRejected, http.StatusConflict},
		{console.ErrDeclined, http.StatusConflict},
		{console.ErrNotOnScreen, http.StatusConflict},
		{setting.ErrReadonly, http.StatusLocked},
		{console.ErrNoDocument, http.StatusServiceUnavailable},
		{setting.ErrUnbound, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
