package sim

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// DefaultAPIKey mirrors the placeholder key Kener ships with.
const DefaultAPIKey = "supersecret_api_key"

// Config controls HTTP server settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	APIKey       string
	// RateLimit is the allowed request rate per second across all API
	// routes; zero disables limiting. Over-limit requests receive 429.
	RateLimit float64
	RateBurst int
}

// Dependencies holds external collaborators required by the server.
type Dependencies struct {
	Logger *log.Logger
	Store  Store
}

// Server wraps http.Server for convenience.
type Server struct {
	*http.Server
	cfg  Config
	deps Dependencies
}

// New constructs the simulator with the monitor API routes.
func New(cfg Config, deps Dependencies) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultAPIKey
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if deps.Store == nil {
		deps.Store = NewMemoryStore()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/monitor", guard(cfg, limiter, listMonitorsHandler(deps))).Methods(http.MethodGet)
	r.HandleFunc("/api/monitor", guard(cfg, limiter, createMonitorHandler(deps))).Methods(http.MethodPost)
	r.HandleFunc("/api/monitor/{id}", guard(cfg, limiter, updateMonitorHandler(deps))).Methods(http.MethodPut)
	r.HandleFunc("/api/monitor/{id}", guard(cfg, limiter, deleteMonitorHandler(deps))).Methods(http.MethodDelete)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	s := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return &Server{Server: s, cfg: cfg, deps: deps}
}

func guard(cfg Config, limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil && !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		if !authorize(r, cfg.APIKey) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func authorize(r *http.Request, key string) bool {
	if strings.TrimSpace(key) == "" {
		return false
	}
	const prefix = "Bearer "
	value := r.Header.Get("Authorization")
	if !strings.HasPrefix(value, prefix) {
		return false
	}
	return strings.TrimSpace(strings.TrimPrefix(value, prefix)) == key
}

// monitorRequest is the create/update body. TypeData accepts any JSON value
// and is stored as its compact encoding, which is how Kener itself persists
// monitor configuration.
type monitorRequest struct {
	Name         string          `json:"name"`
	Tag          string          `json:"tag"`
	Status       string          `json:"status"`
	Cron         string          `json:"cron"`
	CategoryName string          `json:"category_name"`
	MonitorType  string          `json:"monitor_type"`
	TypeData     json.RawMessage `json:"type_data"`
}

func (req monitorRequest) input() (MonitorInput, error) {
	input := MonitorInput{
		Name:         req.Name,
		Tag:          req.Tag,
		Status:       req.Status,
		Cron:         req.Cron,
		CategoryName: req.CategoryName,
		MonitorType:  req.MonitorType,
	}
	if len(req.TypeData) > 0 && string(req.TypeData) != "null" {
		var buf bytes.Buffer
		if err := json.Compact(&buf, req.TypeData); err != nil {
			return MonitorInput{}, fmt.Errorf("invalid type_data: %w", err)
		}
		input.TypeData = buf.String()
	}
	return input, nil
}

func listMonitorsHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := r.URL.Query().Get("tag")

		monitors, err := deps.Store.ListMonitors(r.Context(), tag)
		if err != nil {
			deps.Logger.Printf("list monitors failed: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if monitors == nil {
			monitors = []MonitorRecord{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(monitors); err != nil {
			deps.Logger.Printf("encode monitors failed: %v", err)
		}
	}
}

func createMonitorHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req monitorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		input, err := req.input()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rec, err := deps.Store.CreateMonitor(r.Context(), input)
		if err != nil {
			deps.Logger.Printf("create monitor failed: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rec)
	}
}

func updateMonitorHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req monitorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		input, err := req.input()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rec, err := deps.Store.UpdateMonitor(r.Context(), id, input)
		if err != nil {
			if errors.Is(err, ErrMonitorNotFound) {
				http.Error(w, "monitor not found", http.StatusNotFound)
				return
			}
			deps.Logger.Printf("update monitor %s failed: %v", id, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rec)
	}
}

func deleteMonitorHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := deps.Store.DeleteMonitor(r.Context(), id); err != nil {
			if errors.Is(err, ErrMonitorNotFound) {
				http.Error(w, "monitor not found", http.StatusNotFound)
				return
			}
			deps.Logger.Printf("delete monitor %s failed: %v", id, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
