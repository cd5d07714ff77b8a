package tours

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	siteTitle       = "WanderWise"
	siteDescription = "Discover your next adventure"
)

// Lister produces a page of tours for a filter.
type Lister interface {
	List(ctx context.Context, f Filter) (*Listing, error)
}

// Handler serves the tour listing page and its JSON counterpart.
type Handler struct {
	lister Lister
	logger *slog.Logger
	page   *template.Template
	now    func() time.Time
}

type pageData struct {
	Title       string
	Description string
	Year        int
	Listing     *Listing
}

// NewHandler returns a Handler reading from lister. A nil logger discards
// logs.
func NewHandler(lister Lister, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		lister: lister,
		logger: logger,
		page:   template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/tours.html")),
		now:    time.Now,
	}
}

// Register mounts the tour routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/tours", http.StatusFound)
	})
	mux.HandleFunc("GET /tours", h.servePage)
	mux.HandleFunc("GET /api/tours", h.serveJSON)
}

var errBadPaging = errors.New("limit and offset must be non-negative integers")

func filterFromRequest(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{Query: q.Get("q")}

	for _, p := range []struct {
		key string
		dst *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Filter{}, errBadPaging
		}
		*p.dst = n
	}
	return f, nil
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	listing, err := h.lister.List(r.Context(), f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list tours", "error", err, "query", f.Query)
		http.Error(w, "We couldn't load tours right now. Please try again.", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err = h.page.ExecuteTemplate(&buf, "layout", pageData{
		Title:       siteTitle,
		Description: siteDescription,
		Year:        h.now().Year(),
		Listing:     listing,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "render tours page", "error", err)
		http.Error(w, "We couldn't load tours right now. Please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "write tours page", "error", err)
	}
}

func (h *Handler) serveJSON(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromRequest(r)
	if err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	listing, err := h.lister.List(r.Context(), f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list tours", "error", err, "query", f.Query)
		h.writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	h.writeJSON(w, r, http.StatusOK, listing)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "encode json response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.WarnContext(r.Context(), "write json response", "error", err)
	}
}
