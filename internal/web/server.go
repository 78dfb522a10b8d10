package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/solstice-finance/fde/internal/engine"
	"github.com/solstice-finance/fde/internal/logger"
	"github.com/solstice-finance/fde/internal/reservoir"
	"github.com/solstice-finance/fde/internal/state"
	"github.com/solstice-finance/fde/internal/ticksource"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the farm ledger over HTTP: queries for pools, positions
// and pending rewards, plus the participant actions and the administrator
// surface. Actions are serialized by the engine; handlers only fetch the
// current tick and translate errors.
type WebServer struct {
	router    *mux.Router
	port      string
	engine    *engine.Engine
	reservoir *reservoir.Reservoir
	ticks     ticksource.Source
	resolve   engine.AssetResolver
	faucet    FaucetFunc
	advance   AdvanceFunc
	persist   func()
}

// FaucetFunc mints staked tokens to an account. Only wired in simulation
// deployments; a nil faucet disables the endpoint.
type FaucetFunc func(denom, account string, amount sdkmath.Int) error

// AdvanceFunc moves the manual tick counter forward and returns the new tick.
// Only wired in simulation deployments; a nil func disables the endpoint.
type AdvanceFunc func(delta uint64) uint64

// Config holds the dependencies for a new web server.
type Config struct {
	Port      string
	Engine    *engine.Engine
	Reservoir *reservoir.Reservoir
	Ticks     ticksource.Source

	// Resolve maps a staked-asset denom to its service for pool
	// registration.
	Resolve engine.AssetResolver

	// Faucet mints staked tokens in simulation deployments. Optional.
	Faucet FaucetFunc

	// Advance drives the manual tick counter in simulation deployments,
	// where no chain produces blocks. Optional.
	Advance AdvanceFunc

	// Persist, if set, is invoked after every successful mutating action to
	// checkpoint the ledger.
	Persist func()
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg Config) *WebServer {
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:    mux.NewRouter(),
		port:      port,
		engine:    cfg.Engine,
		reservoir: cfg.Reservoir,
		ticks:     cfg.Ticks,
		resolve:   cfg.Resolve,
		faucet:    cfg.Faucet,
		advance:   cfg.Advance,
		persist:   cfg.Persist,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/tick", ws.handleGetTick).Methods("GET")
	api.HandleFunc("/tick/advance", ws.handleAdvanceTick).Methods("POST")
	api.HandleFunc("/pools", ws.handleGetPools).Methods("GET")
	api.HandleFunc("/pools/{id}", ws.handleGetPool).Methods("GET")
	api.HandleFunc("/pools/{id}/pending/{participant}", ws.handleGetPending).Methods("GET")
	api.HandleFunc("/positions/{participant}", ws.handleGetPositions).Methods("GET")
	api.HandleFunc("/receipts", ws.handleGetReceipts).Methods("GET")
	api.HandleFunc("/reservoir", ws.handleGetReservoir).Methods("GET")
	api.HandleFunc("/reservoir/operator", ws.handleRotateOperator).Methods("PUT")

	// Participant actions
	api.HandleFunc("/faucet", ws.handleFaucet).Methods("POST")
	api.HandleFunc("/pools/{id}/deposit", ws.handleDeposit).Methods("POST")
	api.HandleFunc("/pools/{id}/withdraw", ws.handleWithdraw).Methods("POST")
	api.HandleFunc("/pools/{id}/emergency-withdraw", ws.handleEmergencyWithdraw).Methods("POST")

	// Administrator surface
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/pools", ws.handleRegisterPool).Methods("POST")
	admin.HandleFunc("/pools/{id}/weight", ws.handleSetWeight).Methods("PUT")
	admin.HandleFunc("/owner", ws.handleTransferOwnership).Methods("PUT")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// Handler exposes the router, mainly for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hasErrors := false

	tickInfo := map[string]interface{}{}
	tick, err := ws.ticks.Current(r.Context())
	if err != nil {
		hasErrors = true
		tickInfo["error"] = err.Error()
	} else {
		tickInfo["current_tick"] = tick
	}

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
		hasErrors = true
	}

	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "fde-farm-distribution-engine",
			"version": "1.0.0",
		},
		"farm_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"pool_count":       len(ws.engine.Pools()),
			"total_weight":     ws.engine.TotalAllocationWeight(),
			"tick_info":        tickInfo,
		},
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
