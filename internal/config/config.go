package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Services that can be mounted on "/"
const (
	ServiceBMI   = "bmi"
	ServiceSolar = "solar"
)

// Defaults
const (
	DefaultPort      = 8080
	DefaultService   = ServiceBMI
	DefaultModelPath = "app/model_rfr.plk"
	DefaultModelLoad = "startup"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// EnvPrefix is prepended to every environment override, e.g. SOLARBMI_SERVER_PORT
const EnvPrefix = "SOLARBMI"

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Model   ModelConfig   `mapstructure:"model" yaml:"model"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Version is set by the binary, not read from configuration
	Version string `mapstructure:"-" yaml:"-"`
}

// ServerConfig selects the listening port and the service on "/"
type ServerConfig struct {
	Port    int    `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	Service string `mapstructure:"service" yaml:"service" validate:"oneof=bmi solar"`
}

// ModelConfig locates the regression model used by the solar service
type ModelConfig struct {
	Path  string `mapstructure:"path" yaml:"path" validate:"required"`
	Load  string `mapstructure:"load" yaml:"load" validate:"oneof=startup per_request"`
	Watch bool   `mapstructure:"watch" yaml:"watch"`
}

// LogConfig controls the logrus logger
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// MetricsConfig toggles the /metrics endpoint
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"port":       "server.port",
	"service":    "server.service",
	"model":      "model.path",
	"model-load": "model.load",
	"watch":      "model.watch",
	"log-level":  "log.level",
	"log-format": "log.format",
	"metrics":    "metrics.enabled",
}

// RegisterFlags adds the configuration flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("port", DefaultPort, "HTTP server port")
	fs.String("service", DefaultService, "Service mounted on / (bmi or solar)")
	fs.String("model", DefaultModelPath, "Path to the regression model artifact")
	fs.String("model-load", DefaultModelLoad, "When to read the model: startup or per_request")
	fs.Bool("watch", true, "Reload the model when the artifact changes (startup mode)")
	fs.String("log-level", DefaultLogLevel, "Log level")
	fs.String("log-format", DefaultLogFormat, "Log format: text or json")
	fs.Bool("metrics", true, "Serve Prometheus metrics on /metrics")
}

// Load builds the configuration from defaults, the optional YAML file at path,
// SOLARBMI_* environment variables and explicitly set flags, in that order.
// fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.service", DefaultService)
	v.SetDefault("model.path", DefaultModelPath)
	v.SetDefault("model.load", DefaultModelLoad)
	v.SetDefault("model.watch", true)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("metrics.enabled", true)
}

var validate = validator.New()

// Validate checks structural constraints on a configuration
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %v fails %s", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// YAML renders the configuration as a config file
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
