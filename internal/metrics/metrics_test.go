package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WriteText(&buf))

	out := buf.String()
	assert.NotContains(t, out, "solarbmi_http_requests_total")
	assert.Contains(t, out, "solarbmi_predictions_total 0")
	assert.Contains(t, out, `solarbmi_model_loads_total{result="success"} 0`)
	assert.Contains(t, out, "go_goroutines")
}

func TestWriteTextCounts(t *testing.T) {
	r := New()
	r.ObserveRequest("solar", 200)
	r.ObserveRequest("solar", 200)
	r.ObserveRequest("solar", 400)
	r.ObserveRequest("bmi", 200)
	r.ObservePrediction()
	r.ObserveModelLoad(true)
	r.ObserveModelLoad(false)
	r.ObserveModelLoad(false)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	out := buf.String()

	assert.Contains(t, out, "# TYPE solarbmi_http_requests_total counter")
	assert.Contains(t, out, `solarbmi_http_requests_total{code="200",route="solar"} 2`)
	assert.Contains(t, out, `solarbmi_http_requests_total{code="400",route="solar"} 1`)
	assert.Contains(t, out, `solarbmi_http_requests_total{code="200",route="bmi"} 1`)
	assert.Contains(t, out, "solarbmi_predictions_total 1")
	assert.Contains(t, out, `solarbmi_model_loads_total{result="failure"} 2`)
	assert.Contains(t, out, `solarbmi_model_loads_total{result="success"} 1`)
}

func TestWriteTextParses(t *testing.T) {
	r := New()
	r.ObserveRequest("bmi", 500)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(&buf)
	require.NoError(t, err)
	require.Contains(t, families, "solarbmi_http_requests_total")
	assert.Equal(t, 1.0, families["solarbmi_http_requests_total"].Metric[0].GetCounter().GetValue())
}

func TestHandlerServesText(t *testing.T) {
	r := New()
	r.ObserveRequest("bmi", 200)
	r.ObservePrediction()

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, w.Body.String(), `solarbmi_http_requests_total{code="200",route="bmi"} 1`)
	assert.Contains(t, w.Body.String(), "solarbmi_predictions_total 1")
}

func TestFamiliesSorted(t *testing.T) {
	r := New()
	r.ObserveRequest("solar", 200)

	families, err := r.Families()
	require.NoError(t, err)
	for i := 1; i < len(families); i++ {
		assert.Less(t, families[i-1].GetName(), families[i].GetName())
	}
}
