// Package modelstore owns the regression model served by the solar service.
//
// In startup mode the artifact is read once and kept in memory; Watch can
// replace it when the file changes on disk. In per_request mode the artifact
// is read from disk on every call to Current.
package modelstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kartoza/solar-bmi/internal/logging"
	"github.com/kartoza/solar-bmi/internal/models"
	"github.com/kartoza/solar-bmi/internal/regressor"
)

// Mode selects when the artifact is read
type Mode string

const (
	ModeStartup    Mode = "startup"
	ModePerRequest Mode = "per_request"
)

// ErrNoModel is returned when no usable model can be provided
var ErrNoModel = errors.New("model unavailable")

// Option configures a Store
type Option func(*Store)

// WithLoadHook registers fn to be called after every load attempt
func WithLoadHook(fn func(ok bool)) Option {
	return func(s *Store) { s.onLoad = fn }
}

// Store holds the current model and the outcome of the last load
type Store struct {
	path   string
	mode   Mode
	log    *logrus.Logger
	onLoad func(ok bool)

	mu       sync.RWMutex
	current  *regressor.Forest
	format   regressor.Format
	loadedAt time.Time
	lastErr  error
}

// New creates a store for the artifact at path. In startup mode the model is
// loaded immediately; a failed load is logged and left for Reload or Watch.
func New(path string, mode Mode, opts ...Option) (*Store, error) {
	switch mode {
	case ModeStartup, ModePerRequest:
	default:
		return nil, fmt.Errorf("model load mode %q unknown: want startup|per_request", mode)
	}

	s := &Store{
		path: path,
		mode: mode,
		log:  logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if mode == ModeStartup {
		if err := s.Reload(); err != nil {
			s.log.WithError(err).WithField("path", path).Warn("model not available at startup")
		}
	}
	return s, nil
}

// Path returns the artifact location
func (s *Store) Path() string {
	return s.path
}

// Mode returns the load mode
func (s *Store) Mode() Mode {
	return s.mode
}

// Current returns the model to use for one prediction
func (s *Store) Current() (regressor.Predictor, error) {
	if s.mode == ModePerRequest {
		f, err := s.load()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoModel, err)
		}
		return f, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		if s.lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoModel, s.lastErr)
		}
		return nil, ErrNoModel
	}
	return s.current, nil
}

// Reload reads the artifact and swaps it in. On failure the previous model stays.
func (s *Store) Reload() error {
	_, err := s.load()
	return err
}

func (s *Store) load() (*regressor.Forest, error) {
	f, format, err := regressor.Load(s.path)
	if s.onLoad != nil {
		s.onLoad(err == nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		if s.mode == ModePerRequest {
			// Nothing is served from memory in this mode.
			s.current = nil
		}
		return nil, err
	}

	s.current = f
	s.format = format
	s.loadedAt = time.Now()
	s.lastErr = nil

	if s.mode == ModeStartup {
		depth := 0
		for i := range f.Trees {
			if d := f.Trees[i].Depth(); d > depth {
				depth = d
			}
		}
		s.log.WithFields(logrus.Fields{
			"path":      s.path,
			"format":    format,
			"trees":     len(f.Trees),
			"features":  f.NFeatures,
			"max_depth": depth,
		}).Info("model loaded")
	}
	return f, nil
}

// Status reports what the store currently holds
func (s *Store) Status() models.ModelStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := models.ModelStatus{
		Path:   s.path,
		Mode:   string(s.mode),
		Loaded: s.current != nil,
	}
	if s.current != nil {
		st.Format = string(s.format)
		st.Trees = len(s.current.Trees)
		st.Features = s.current.NFeatures
		st.LoadedAt = s.loadedAt.UTC().Format(time.RFC3339)
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}
