package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/quick-calculator/calcdir/internal/app"
	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/renderer"
	"github.com/quick-calculator/calcdir/internal/validation"
)

// liveReloadScript reconnects to /ws and reloads the page on change.
const liveReloadScript = `<script>
(function () {
  var delay = 500;
  function connect() {
    var proto = location.protocol === "https:" ? "wss:" : "ws:";
    var ws = new WebSocket(proto + "//" + location.host + "/ws");
    ws.onopen = function () { delay = 500; };
    ws.onmessage = function (event) {
      var msg = JSON.parse(event.data);
      if (msg.type === "reload") { location.reload(); }
      if (msg.type === "error") { console.error("calcdir reload failed:", msg.content); }
    };
    ws.onclose = function () { setTimeout(connect, delay); delay = Math.min(delay * 2, 5000); };
  }
  connect();
})();
</script>
`

// LiveReload is the head component injected into every served page.
func LiveReload() templ.Component {
	return templ.Raw(liveReloadScript)
}

// HealthStatus is the /healthz response body.
type HealthStatus struct {
	Status      string    `json:"status"`
	Calculators int       `json:"calculators"`
	Components  int       `json:"components"`
	Clients     int       `json:"clients"`
	LoadedAt    time.Time `json:"loadedAt"`
	Reloads     int64     `json:"reloads"`
	LastError   string    `json:"lastError,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	status := HealthStatus{
		Status:      "ok",
		Calculators: snap.Store.Len(),
		Components:  snap.Registry.Count(),
		Clients:     s.hub.Count(),
		LoadedAt:    snap.LoadedAt,
		Reloads:     s.reloads.Load(),
		LastError:   s.LastError(),
	}
	if status.LastError != "" {
		status.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handlePaths(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot().Paths())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	scope, err := app.ParseScope(r.URL.Query().Get("only"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	snap := s.Snapshot()
	report := snap.Validate(scope)

	var buf bytes.Buffer
	if err := validation.Render(&buf, report, format, snap.TextOptions()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
	case "yaml":
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	base := snap.Policy.Base()
	if !snap.Config.Site.BaseLocaleAtRoot {
		http.Redirect(w, r, "/"+base+"/", http.StatusFound)

		return
	}
	s.serveIndex(w, r, snap, base)
}

func (s *Server) handleLocaleHome(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	code := r.PathValue("locale")
	if code == snap.Policy.Base() && snap.Config.Site.BaseLocaleAtRoot {
		http.Redirect(w, r, "/", http.StatusMovedPermanently)

		return
	}
	s.serveIndex(w, r, snap, code)
}

// handleRootPage serves /{slug}: the base locale when it lives at the root,
// otherwise a redirect to the prefixed path.
func (s *Server) handleRootPage(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	slug := r.PathValue("slug")
	base := snap.Policy.Base()

	if snap.Policy.Known(slug) {
		http.Redirect(w, r, "/"+slug+"/", http.StatusMovedPermanently)

		return
	}
	if !snap.Config.Site.BaseLocaleAtRoot {
		http.Redirect(w, r, "/"+base+"/"+slug, http.StatusFound)

		return
	}
	s.servePage(w, r, snap, base, slug)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	code, slug := r.PathValue("locale"), r.PathValue("slug")

	if code == snap.Policy.Base() && snap.Config.Site.BaseLocaleAtRoot {
		http.Redirect(w, r, "/"+slug, http.StatusMovedPermanently)

		return
	}
	s.servePage(w, r, snap, code, slug)
}

// handleRootCategory serves /categories/{category} for the base locale.
func (s *Server) handleRootCategory(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	cat := r.PathValue("category")
	base := snap.Policy.Base()

	if !snap.Config.Site.BaseLocaleAtRoot {
		http.Redirect(w, r, "/"+base+"/categories/"+cat, http.StatusFound)

		return
	}
	s.serveCategory(w, r, snap, base, cat)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	snap := s.Snapshot()
	code, cat := r.PathValue("locale"), r.PathValue("category")

	if code == snap.Policy.Base() && snap.Config.Site.BaseLocaleAtRoot {
		http.Redirect(w, r, "/categories/"+cat, http.StatusMovedPermanently)

		return
	}
	s.serveCategory(w, r, snap, code, cat)
}

func (s *Server) serveCategory(w http.ResponseWriter, r *http.Request, snap *app.Snapshot, code, cat string) {
	page, err := snap.Renderer.Category(r.Context(), code, content.Category(cat))
	if err != nil {
		s.renderError(w, r, snap, code, err)

		return
	}

	s.writeComponent(w, r, http.StatusOK, page.Document(LiveReload()))
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, snap *app.Snapshot, code, slug string) {
	page, err := snap.Renderer.Render(r.Context(), code, slug)
	if err != nil {
		s.renderError(w, r, snap, code, err)

		return
	}

	s.writeComponent(w, r, http.StatusOK, page.Document(LiveReload()))
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request, snap *app.Snapshot, code string) {
	index, err := snap.Renderer.Index(r.Context(), code)
	if err != nil {
		s.renderError(w, r, snap, code, err)

		return
	}

	s.writeComponent(w, r, http.StatusOK, index.Document(LiveReload()))
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, snap *app.Snapshot, code string, err error) {
	if errors.IsNotFound(err) {
		s.logger.Debug(r.Context(), "Page not found", "path", r.URL.Path)
		home := snap.Renderer.HomeURL(snap.Policy.Base())
		if snap.Policy.Known(code) {
			home = snap.Renderer.HomeURL(code)
		}
		lang := code
		if !snap.Policy.Known(code) {
			lang = snap.Policy.Base()
		}
		s.writeComponent(w, r, http.StatusNotFound, renderer.NotFoundDocument(lang, home))

		return
	}

	s.logger.Error(r.Context(), err, "Render failed", "path", r.URL.Path)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// writeComponent buffers the component so a render error still yields a
// clean 500 instead of a truncated page.
func (s *Server) writeComponent(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		s.logger.Error(r.Context(), err, "Render failed", "path", r.URL.Path)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
