package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/kartoza/solar-bmi/internal/bmi"
	"github.com/kartoza/solar-bmi/internal/models"
	"github.com/kartoza/solar-bmi/internal/solar"
)

var errNonFinite = errors.New("result is not a finite number")

// handleBMI answers [<request as sent>, <bmi>]
func (h *Handler) handleBMI(w http.ResponseWriter, r *http.Request) {
	body, status, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, status, err)
		return
	}

	var req models.BMIRequest
	if err := models.Decode(body, &req, false); err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}

	value := bmi.Calculate(*req.Weight, *req.Height)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		h.fail(w, r, http.StatusBadRequest, fmt.Errorf("%w: height must be non-zero", errNonFinite))
		return
	}

	// Echo the payload as received, whitespace aside.
	var echo bytes.Buffer
	if err := json.Compact(&echo, body); err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, []interface{}{json.RawMessage(echo.Bytes()), value})
}

// handleSolar answers {"solar irradiation": <prediction>}
func (h *Handler) handleSolar(w http.ResponseWriter, r *http.Request) {
	body, status, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, status, err)
		return
	}

	features, err := solar.Parse(body)
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}

	if h.source == nil {
		h.fail(w, r, http.StatusInternalServerError, errors.New("no model source configured"))
		return
	}
	model, err := h.source.Current()
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	out, err := model.Predict(features)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, fmt.Errorf("predict: %w", err))
		return
	}
	if len(out) == 0 {
		h.fail(w, r, http.StatusInternalServerError, errors.New("predict: model returned no output"))
		return
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		h.fail(w, r, http.StatusInternalServerError, fmt.Errorf("predict: %w", errNonFinite))
		return
	}

	if h.metrics != nil {
		h.metrics.ObservePrediction()
	}
	respondJSON(w, http.StatusOK, models.SolarResponse{Irradiation: out[0]})
}
