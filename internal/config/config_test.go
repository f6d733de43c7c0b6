package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, ServiceBMI, cfg.Server.Service)
	assert.Equal(t, DefaultModelPath, cfg.Model.Path)
	assert.Equal(t, "startup", cfg.Model.Load)
	assert.True(t, cfg.Model.Watch)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFile(t *testing.T) {
	p := writeConfig(t, `server:
  port: 9090
  service: solar
model:
  path: /srv/models/rfr.db
  load: per_request
  watch: false
log:
  level: debug
  format: json
metrics:
  enabled: false
`)
	cfg, err := Load(p, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ServiceSolar, cfg.Server.Service)
	assert.Equal(t, "/srv/models/rfr.db", cfg.Model.Path)
	assert.Equal(t, "per_request", cfg.Model.Load)
	assert.False(t, cfg.Model.Watch)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	p := writeConfig(t, "server:\n  service: solar\n")
	cfg, err := Load(p, nil)
	require.NoError(t, err)
	assert.Equal(t, ServiceSolar, cfg.Server.Service)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultModelPath, cfg.Model.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("SOLARBMI_SERVER_PORT", "7070")
	t.Setenv("SOLARBMI_MODEL_WATCH", "false")

	p := writeConfig(t, "server:\n  port: 9090\n")
	cfg, err := Load(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.False(t, cfg.Model.Watch)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SOLARBMI_SERVER_SERVICE", "bmi")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--service", "solar", "--model", "m.json"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, ServiceSolar, cfg.Server.Service)
	assert.Equal(t, "m.json", cfg.Model.Path)
	// Unset flags do not clobber defaults.
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown service", "server:\n  service: weather\n"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"unknown load mode", "model:\n  load: lazy\n"},
		{"empty model path", "model:\n  path: \"\"\n"},
		{"unknown log format", "log:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml", nil)
	assert.Error(t, err)
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	cfg.Version = "1.2.3"

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "1.2.3")

	var decoded Config
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, cfg.Server, decoded.Server)
	assert.Equal(t, cfg.Model, decoded.Model)

	// The dump is itself a loadable config file.
	reloaded, err := Load(writeConfig(t, string(out)), nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, reloaded.Server)
}
