package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/kartoza/solar-bmi/internal/config"
	"github.com/kartoza/solar-bmi/internal/logging"
	"github.com/kartoza/solar-bmi/internal/metrics"
	"github.com/kartoza/solar-bmi/internal/models"
	"github.com/kartoza/solar-bmi/internal/regressor"
)

// maxBodyBytes caps request bodies; both payloads are a handful of numbers
const maxBodyBytes = 1 << 20

// ModelSource provides the model for a single prediction
type ModelSource interface {
	Current() (regressor.Predictor, error)
	Status() models.ModelStatus
}

// Handler provides HTTP API endpoints
type Handler struct {
	cfg     config.Config
	source  ModelSource
	metrics *metrics.Registry
	log     *logrus.Logger
}

// NewHandler creates a new API handler. source may be nil for the BMI
// service and reg may be nil to disable counting.
func NewHandler(cfg config.Config, source ModelSource, reg *metrics.Registry) *Handler {
	return &Handler{
		cfg:     cfg,
		source:  source,
		metrics: reg,
		log:     logging.GetLogger(),
	}
}

// RegisterRoutes sets up all routes on r
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Use(requestID, h.accessLog)

	// Health and info
	r.HandleFunc("/api/health", h.handleHealth).Methods("GET").Name("health")
	r.HandleFunc("/api/info", h.handleInfo).Methods("GET").Name("info")

	if h.metrics != nil && h.cfg.Metrics.Enabled {
		r.HandleFunc("/metrics", h.handleMetrics).Methods("GET").Name("metrics")
	}

	// The service itself; GET and POST are handled identically
	switch h.cfg.Server.Service {
	case config.ServiceSolar:
		r.HandleFunc("/", h.handleSolar).Methods("GET", "POST").Name(config.ServiceSolar)
	default:
		r.HandleFunc("/", h.handleBMI).Methods("GET", "POST").Name(config.ServiceBMI)
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		logging.GetLogger().WithError(err).Error("encoding response")
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

// fail logs err against the request and writes the matching error response.
// Request-shape errors are the client's; everything else is ours.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	entry := h.log.WithFields(logrus.Fields{
		"request_id": RequestIDFrom(r.Context()),
		"path":       r.URL.Path,
		"status":     status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
	respondError(w, status, err.Error())
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	if models.IsBadRequest(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// readBody reads the whole request body, bounded by maxBodyBytes.
// The body is parsed as JSON whatever the Content-Type says.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, err
		}
		return nil, http.StatusBadRequest, err
	}
	return body, http.StatusOK, nil
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := models.InfoResponse{
		Version: h.cfg.Version,
		Service: h.cfg.Server.Service,
	}
	if h.source != nil {
		st := h.source.Status()
		info.Model = &st
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.Handler().ServeHTTP(w, r)
}
