// Package solar maps solar-irradiance requests onto the model's input vector.
//
// A request is either a JSON object carrying the ten named fields, or a JSON
// array of ten numbers already in model order. Position is always derived
// from the field name, never from key order in the object.
package solar

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kartoza/solar-bmi/internal/models"
)

// NumFeatures is the length of the model input vector
const NumFeatures = 10

// FieldNames lists the request fields in model input order.
var FieldNames = [NumFeatures]string{
	"month",
	"day",
	"daily_temp",
	"daily_precip",
	"daily_humidity",
	"daily_pressure",
	"daily_windDir",
	"daily_windSpeed",
	"daily_DNI",
	"daily_DHI",
}

// Vector returns the features in model input order.
// It panics if a field is nil; call models.Validate first.
func Vector(f *models.SolarFeatures) []float64 {
	return []float64{
		*f.Month,
		*f.Day,
		*f.DailyTemp,
		*f.DailyPrecip,
		*f.DailyHumidity,
		*f.DailyPressure,
		*f.DailyWindDir,
		*f.DailyWindSpeed,
		*f.DailyDNI,
		*f.DailyDHI,
	}
}

// Parse turns a request body into the model input vector.
func Parse(body []byte) ([]float64, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", models.ErrMalformed)
	}

	switch trimmed[0] {
	case '{':
		var f models.SolarFeatures
		if err := models.Decode(trimmed, &f, true); err != nil {
			return nil, err
		}
		return Vector(&f), nil
	case '[':
		return parseOrdered(trimmed)
	default:
		return nil, fmt.Errorf("%w: body must be a JSON object or array", models.ErrMalformed)
	}
}

func parseOrdered(body []byte) ([]float64, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw []interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformed, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", models.ErrMalformed)
	}
	if len(raw) != NumFeatures {
		return nil, fmt.Errorf("%w: want %d, got %d", models.ErrArity, NumFeatures, len(raw))
	}

	out := make([]float64, NumFeatures)
	for i, v := range raw {
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: %s (position %d)", models.ErrFieldType, FieldNames[i], i)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s (position %d): %v", models.ErrFieldType, FieldNames[i], i, err)
		}
		out[i] = f
	}
	return out, nil
}
