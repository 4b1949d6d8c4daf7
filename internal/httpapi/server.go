package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"shopmetrics/internal/engine"
	"shopmetrics/internal/gather"
	"shopmetrics/internal/store"
	"shopmetrics/internal/util"
)

// Server serves the metrics API over the current engine. A reload swaps
// in a new engine; requests in flight keep the one they started with.
type Server struct {
	source  gather.Source
	history store.History     // nil disables recording
	reloads *util.RateLimiter // nil means unlimited
	opts    []engine.Option
	log     *slog.Logger

	mu       sync.RWMutex
	engine   *engine.Engine
	loadedAt time.Time
}

// NewServer creates a server with an empty engine. Call Reload or
// SetEngine before serving data. opts are applied to every engine built
// by Reload.
func NewServer(source gather.Source, log *slog.Logger, opts ...engine.Option) *Server {
	if log == nil {
		log = slog.Default()
	}
	opts = append(opts[:len(opts):len(opts)], engine.WithLogger(log))
	return &Server{
		source: source,
		opts:   opts,
		log:    log,
		engine: engine.New(nil, opts...),
	}
}

// SetHistory enables recording of the period series and latest KPI on
// every reload.
func (s *Server) SetHistory(h store.History) { s.history = h }

// SetReloadLimit caps POST /api/reload at perMinute requests. Zero or less
// removes the cap.
func (s *Server) SetReloadLimit(perMinute int) {
	if perMinute <= 0 {
		s.reloads = nil
		return
	}
	s.reloads = util.NewRateLimiter(perMinute, 1)
}

// SetEngine swaps in e.
func (s *Server) SetEngine(e *engine.Engine) {
	s.mu.Lock()
	s.engine = e
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// Engine returns the current engine.
func (s *Server) Engine() *engine.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// Reload reads the source and swaps in an engine over the new snapshot. An
// empty orders directory loads an empty snapshot rather than failing.
func (s *Server) Reload(ctx context.Context) error {
	if s.source == nil {
		return errors.New("no data source configured")
	}
	data, err := s.source.Load(ctx)
	if errors.Is(err, gather.ErrNoOrders) {
		s.log.Warn("no order files found", "source", s.source.Name())
	} else if err != nil {
		return fmt.Errorf("loading %s: %w", s.source.Name(), err)
	}

	e := engine.New(store.Load(data), s.opts...)
	s.SetEngine(e)
	s.log.Info("snapshot loaded", "source", s.source.Name(), "dates", len(e.Dates()))

	if s.history != nil {
		if err := s.record(ctx, e); err != nil {
			s.log.Warn("recording history", "error", err)
		}
	}
	return nil
}

func (s *Server) record(ctx context.Context, e *engine.Engine) error {
	latest, ok := e.LatestDate()
	if !ok {
		return nil
	}
	if err := s.history.SavePeriods(ctx, e.PeriodComparison()); err != nil {
		return err
	}
	return s.history.SaveKPI(ctx, e.KPI(latest))
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dates", s.handleDates)
	mux.HandleFunc("GET /api/kpi", s.handleKPI)
	mux.HandleFunc("GET /api/period", s.handlePeriod)
	mux.HandleFunc("GET /api/change-rates", s.handleChangeRates)
	mux.HandleFunc("GET /api/risk", s.handleRisk)
	mux.HandleFunc("GET /api/new-shops", s.handleNewShops)
	mux.HandleFunc("GET /api/new-shops/diff", s.handleNewShopsDiff)
	mux.HandleFunc("GET /api/tracking", s.handleTracking)
	mux.HandleFunc("GET /api/provider-stats", s.handleProviderStats)
	mux.HandleFunc("GET /api/payment-summary", s.handlePaymentSummary)
	mux.HandleFunc("GET /api/agencies", s.handleAgencies)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/reload", s.handleReload)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

// ---------------------------------------------------------------------------
// Parameter helpers
// ---------------------------------------------------------------------------

// errNoData marks a request that needs a date when none is loaded.
var errNoData = errors.New("no data loaded")

// dateParam reads a YYYYMMDD query parameter. When absent it falls back to
// def; an empty def makes the parameter required.
func dateParam(r *http.Request, name, def string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		if def == "" {
			return "", fmt.Errorf("%s required", name)
		}
		return def, nil
	}
	if _, ok := engine.ParseDateKey(v); !ok {
		return "", fmt.Errorf("invalid %s %q: want YYYYMMDD", name, v)
	}
	return v, nil
}

// targetDate resolves the "date" parameter against e, defaulting to the
// latest loaded date.
func targetDate(r *http.Request, e *engine.Engine) (string, error) {
	latest, ok := e.LatestDate()
	if !ok {
		return "", errNoData
	}
	return dateParam(r, "date", latest)
}

// writeParamError answers 404 for errNoData and 400 otherwise.
func writeParamError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNoData) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	latest, _ := e.LatestDate()
	writeJSON(w, DatesResponse{Dates: e.Dates(), Latest: latest})
}

func (s *Server) handleKPI(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	date, err := targetDate(r, e)
	if err != nil {
		writeParamError(w, err)
		return
	}
	writeJSON(w, e.KPI(date))
}

func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine().PeriodComparison())
}

func (s *Server) handleChangeRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, engine.ChangeRates(s.Engine().PeriodComparison()))
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	date, err := targetDate(r, e)
	if err != nil {
		writeParamError(w, err)
		return
	}
	shops := e.FindRiskShops(date)
	writeJSON(w, RiskResponse{Date: date, Count: len(shops), Shops: shops})
}

func (s *Server) handleNewShops(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	date, err := targetDate(r, e)
	if err != nil {
		writeParamError(w, err)
		return
	}
	days := e.NewShopWindow()
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid days %q", v))
			return
		}
		days = n
	}
	shops := e.FindRecentlyAdded(date, days)
	writeJSON(w, NewShopsResponse{Date: date, Days: days, Count: len(shops), Shops: shops})
}

func (s *Server) handleNewShopsDiff(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	prev, err := dateParam(r, "prev", "")
	if err != nil {
		writeParamError(w, err)
		return
	}
	cur, err := dateParam(r, "cur", "")
	if err != nil {
		writeParamError(w, err)
		return
	}
	shops := e.FindNewShops(prev, cur)
	writeJSON(w, NewShopsDiffResponse{Prev: prev, Cur: cur, Count: len(shops), Shops: shops})
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	date, err := targetDate(r, e)
	if err != nil {
		writeParamError(w, err)
		return
	}
	writeJSON(w, TrackingResponse{Date: date, Shops: e.TrackNewShops(date)})
}

func (s *Server) handleProviderStats(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	date, err := targetDate(r, e)
	if err != nil {
		writeParamError(w, err)
		return
	}
	writeJSON(w, e.ProviderStats(date))
}

func (s *Server) handlePaymentSummary(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	date, err := targetDate(r, e)
	if err != nil {
		writeParamError(w, err)
		return
	}
	// Without a previous axis date the comparison runs against nothing.
	prev, _ := e.PreviousDate(date)
	if r.URL.Query().Has("prev") {
		if prev, err = dateParam(r, "prev", ""); err != nil {
			writeParamError(w, err)
			return
		}
	}
	writeJSON(w, e.PaymentSummary(date, prev))
}

func (s *Server) handleAgencies(w http.ResponseWriter, r *http.Request) {
	e := s.Engine()
	date, err := targetDate(r, e)
	if err != nil {
		writeParamError(w, err)
		return
	}
	writeJSON(w, AgenciesResponse{Date: date, Agencies: e.AgencyPerformance(date)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	raw := s.Engine().Snapshot().RawData()
	if raw == nil {
		writeError(w, http.StatusNotFound, errNoData.Error())
		return
	}
	writeJSON(w, raw)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reloads != nil && !s.reloads.Allow() {
		writeError(w, http.StatusTooManyRequests, "reload rate limit exceeded")
		return
	}
	if err := s.Reload(r.Context()); err != nil {
		s.log.Error("reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	e := s.Engine()
	latest, _ := e.LatestDate()
	s.mu.RLock()
	loadedAt := s.loadedAt
	s.mu.RUnlock()
	writeJSON(w, ReloadResponse{
		Dates:    len(e.Dates()),
		Latest:   latest,
		LoadedAt: loadedAt.Format(time.RFC3339),
	})
}
