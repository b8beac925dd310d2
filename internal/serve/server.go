// Package serve exposes annotation over HTTP.
package serve

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vincent-caetano/how-much/internal/annotate"
	"github.com/vincent-caetano/how-much/internal/common"
	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/report"
	"github.com/vincent-caetano/how-much/pkg/settings"
)

// MaxBodyBytes caps uploaded documents.
const MaxBodyBytes = 10 << 20

// Server annotates documents on request. All requests share one settings
// store, so a change made through /settings applies to the next request.
type Server struct {
	deps   annotate.Deps
	store  *settings.Store
	logger *slog.Logger
}

func NewServer(deps annotate.Deps, store *settings.Store) *Server {
	return &Server{deps: deps, store: store, logger: deps.Logger}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/annotate", func(r chi.Router) {
		r.Get("/", s.handleAnnotateURL)
		r.Post("/", s.handleAnnotateBody)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", s.handleSettings)
		r.Put("/{key}", s.handleSetSetting)
		r.Delete("/{key}", s.handleResetSetting)
	})

	r.Get("/runs", s.handleRuns)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func options(r *http.Request) (annotate.Options, error) {
	q := r.URL.Query()
	format, ok := models.ParseOutputFormat(q.Get("format"))
	if !ok {
		return annotate.Options{}, fmt.Errorf("unknown format %q", q.Get("format"))
	}
	opts := annotate.Options{
		Format:     format,
		Readable:   q.Get("readable") == "true",
		Sanitize:   q.Get("sanitize") == "true",
		AllDomains: q.Get("all_domains") == "true",
	}
	if m := q.Get("mode"); m != "" {
		mode, ok := models.ParsePresentationMode(m)
		if !ok {
			return annotate.Options{}, fmt.Errorf("unknown mode %q", m)
		}
		opts.Mode = mode
	}
	if origin := q.Get("origin"); origin != "" {
		origin = common.SanitizeURL(origin)
		if err := common.ValidateURL(origin); err != nil {
			return annotate.Options{}, fmt.Errorf("invalid origin: %w", err)
		}
		opts.Origin = origin
	}
	return opts, nil
}

// handleAnnotateURL fetches ?url= and returns the annotated page.
func (s *Server) handleAnnotateURL(w http.ResponseWriter, r *http.Request) {
	opts, err := options(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	target := common.SanitizeURL(r.URL.Query().Get("url"))
	if err := common.ValidateURL(target); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res := annotate.Process(r.Context(), s.deps, annotate.Job{URL: target}, opts)
	s.writeResult(w, res, opts.Format)
}

// handleAnnotateBody annotates the HTML posted in the request body.
func (s *Server) handleAnnotateBody(w http.ResponseWriter, r *http.Request) {
	opts, err := options(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty document"))
		return
	}

	res := annotate.ProcessHTML(r.Context(), s.deps, annotate.Job{Input: "upload"}, body, opts)
	s.writeResult(w, res, opts.Format)
}

func (s *Server) writeResult(w http.ResponseWriter, res annotate.Result, format models.OutputFormat) {
	if res.Error != nil {
		writeError(w, statusFor(res), res.Error)
		return
	}

	w.Header().Set("X-Timecost-Found", strconv.Itoa(res.Annotations.Found))
	w.Header().Set("X-Timecost-Annotated", strconv.Itoa(res.Annotations.Annotated))
	if res.RunID > 0 {
		w.Header().Set("X-Timecost-Run", strconv.FormatInt(res.RunID, 10))
	}

	switch format {
	case models.FormatReport:
		rep := report.Generate([]report.PageReport{annotate.BuildPageReport(res)}, res.Wage, time.Now())
		var buf bytes.Buffer
		if err := rep.Write(&buf); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	case models.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(res.Output)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(res.Output)
	}
}

func statusFor(res annotate.Result) int {
	switch res.ErrorType {
	case annotate.ErrTypeNotWhitelisted:
		return http.StatusForbidden
	case annotate.ErrTypeFetch:
		return http.StatusBadGateway
	case annotate.ErrTypeParse:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// handleSettings returns the settings as YAML, the same form as export.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.store.Export(r.Context(), &buf); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleSetSetting stores the request body as the value of {key}.
func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.Set(r.Context(), key, string(bytes.TrimSpace(value))); err != nil {
		writeError(w, settingStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "key": key})
}

func (s *Server) handleResetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := s.store.Reset(r.Context(), key); err != nil {
		writeError(w, settingStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "key": key})
}

func settingStatus(err error) int {
	switch {
	case errors.Is(err, settings.ErrUnknownSetting):
		return http.StatusNotFound
	case errors.Is(err, settings.ErrInvalidSetting):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type runJSON struct {
	RunID     int64     `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	Domain    string    `json:"domain,omitempty"`
	Mode      string    `json:"mode"`
	Found     int       `json:"found"`
	Annotated int       `json:"annotated"`
	Failed    int       `json:"failed"`
	Salary    string    `json:"salary"`
	Currency  string    `json:"currency"`
}

// handleRuns lists recent runs, optionally filtered by ?domain=.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB == nil {
		writeJSON(w, http.StatusOK, []runJSON{})
		return
	}
	runs, err := s.deps.DB.ListRuns(r.URL.Query().Get("domain"), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, runJSON{
			RunID:     run.RunID,
			CreatedAt: run.CreatedAt,
			Source:    run.Source,
			Domain:    run.Domain,
			Mode:      run.Mode,
			Found:     run.FoundCount,
			Annotated: run.AnnotatedCount,
			Failed:    run.FailedCount,
			Salary:    run.Salary,
			Currency:  run.Currency,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
