package background

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mxnstrexgl/cyberdark/internal/logging"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/store"
)

const maxBodyBytes = 1 << 20

// StateResponse answers the page fast-path query.
type StateResponse struct {
	Enabled     bool `json:"enabled"`
	Blacklisted bool `json:"blacklisted"`
}

// EnabledPayload carries the global toggle.
type EnabledPayload struct {
	Enabled bool `json:"enabled"`
}

// StatusResponse summarizes the daemon for the status command.
type StatusResponse struct {
	Version         string `json:"version"`
	Enabled         bool   `json:"enabled"`
	ScheduleEnabled bool   `json:"scheduleEnabled"`
	InSchedule      bool   `json:"inSchedule"`
	BlacklistSize   int    `json:"blacklistSize"`
	OverrideCount   int    `json:"overrideCount"`
	UptimeSeconds   int64  `json:"uptimeSeconds"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// API exposes the control surface over HTTP.
type API struct {
	st      store.Store
	cache   *Cache
	version string
	started time.Time
}

// NewAPI builds the control API over st and cache.
func NewAPI(st store.Store, cache *Cache, version string) *API {
	return &API{st: st, cache: cache, version: version, started: time.Now()}
}

// Router assembles the chi routes.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestLog)

	r.Get("/healthz", a.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", a.handleStatus)
		r.Get("/state", a.handleState)
		r.Get("/settings", a.handleGetSettings)
		r.Put("/settings", a.handlePutSettings)
		r.Get("/enabled", a.handleGetEnabled)
		r.Put("/enabled", a.handlePutEnabled)
		r.Get("/export", a.handleExport)
		r.Post("/import", a.handleImport)
	})
	return r
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug(fmt.Sprintf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error(fmt.Sprintf("Failed to encode response: %v", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	record := a.cache.Record()
	inSchedule := !record.Schedule.Enabled || record.Schedule.Allows(time.Now())
	writeJSON(w, http.StatusOK, StatusResponse{
		Version:         a.version,
		Enabled:         a.cache.Enabled(),
		ScheduleEnabled: record.Schedule.Enabled,
		InSchedule:      inSchedule,
		BlacklistSize:   len(record.Blacklist),
		OverrideCount:   record.PerSiteOverrides.Len(),
		UptimeSeconds:   int64(time.Since(a.started).Seconds()),
	})
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	hostname := settings.SanitizeDomain(r.URL.Query().Get("hostname"))
	if hostname == "" {
		writeError(w, http.StatusBadRequest, "invalid hostname")
		return
	}
	enabled, blacklisted, err := a.cache.EnabledState(r.Context(), hostname)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{Enabled: enabled, Blacklisted: blacklisted})
}

func (a *API) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	record, err := a.st.Settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	record, err := settings.DecodeImport(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.saveRecord(w, r, record); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) handleGetEnabled(w http.ResponseWriter, r *http.Request) {
	enabled, err := a.st.Enabled(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, EnabledPayload{Enabled: enabled})
}

func (a *API) handlePutEnabled(w http.ResponseWriter, r *http.Request) {
	var payload EnabledPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := a.st.SetEnabled(r.Context(), payload.Enabled); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	record, err := a.st.Settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	data, err := settings.Export(record)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="cyberdark-settings.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Error(fmt.Sprintf("Failed to write export: %v", err))
	}
}

func (a *API) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	record, err := settings.DecodeImport(body)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, settings.ErrInvalidSignature) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	if err := a.saveRecord(w, r, record); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// saveRecord persists the record and maps store errors onto HTTP statuses,
// writing the response itself on failure.
func (a *API) saveRecord(w http.ResponseWriter, r *http.Request, record *settings.Settings) error {
	err := a.st.SaveSettings(r.Context(), record)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrQuotaExceeded):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
	return err
}
