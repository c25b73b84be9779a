package settings

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
)

// FileName settings document inside the data dir
const FileName = "settings.json"

// DefaultRewardTitle used when a reward message is posted without a title
const DefaultRewardTitle = "Nova Meta!"

var (
	ErrInvalidCycle    = errors.New("cycle id is required")
	ErrInvalidWeight   = errors.New("cycle weight must be between 0 and 100")
	ErrEmptyMessage    = errors.New("reward message text is required")
	ErrInvalidSettings = errors.New("invalid settings")
)

var logger = log.New("settings")

// Manager owns the runtime settings: the current cycle, the cycle weights,
// the reward message and the Slack switches. Every change is persisted to
// settings.json before it becomes visible.
type Manager struct {
	path     string
	validate *validator.Validate
	now      func() time.Time

	mu      sync.RWMutex
	current *model.Settings
}

// NewManager loads settings.json from dataDir. A missing file yields the
// defaults; a corrupt file is logged and ignored.
func NewManager(dataDir string) (*Manager, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("dataDir is required")
	}
	m := &Manager{
		path:     filepath.Join(dataDir, FileName),
		validate: validator.New(),
		now:      time.Now,
		current:  model.DefaultSettings(),
	}

	// maps decode by merging, so start them empty to keep removed keys removed
	loaded := model.DefaultSettings()
	loaded.Weights = nil
	loaded.Slack.SupervisorsBySector = nil
	found, err := readJSON(m.path, loaded)
	switch {
	case err != nil:
		logger.Warnf("ignoring unreadable %s: %v", m.path, err)
	case !found:
		logger.Infof("no %s yet, using defaults", m.path)
	default:
		if loaded.Slack.SupervisorsBySector == nil {
			loaded.Slack.SupervisorsBySector = map[string]string{}
		}
		if loaded.Weights == nil {
			loaded.Weights = model.DefaultSettings().Weights
		}
		if err := m.validate.Struct(loaded); err != nil {
			logger.Warnf("ignoring invalid %s: %v", m.path, err)
		} else {
			m.current = loaded
		}
	}
	return m, nil
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// Get returns a copy of the current settings.
func (m *Manager) Get() *model.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// update applies fn to a copy, validates and persists it, then publishes it.
func (m *Manager) update(fn func(s *model.Settings) error) (*model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := m.validate.Struct(next); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := writeJSONAtomic(m.path, next); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	m.current = next
	return next.Clone(), nil
}

// SetCycle changes the current billing cycle.
func (m *Manager) SetCycle(cycle string) (*model.Settings, error) {
	cycle = strings.TrimSpace(cycle)
	if cycle == "" {
		return nil, ErrInvalidCycle
	}
	return m.update(func(s *model.Settings) error {
		s.CurrentCycle = cycle
		return nil
	})
}

// MergeWeights sets the given cycle weights and keeps the others.
func (m *Manager) MergeWeights(weights map[string]int) (*model.Settings, error) {
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	return m.update(func(s *model.Settings) error {
		for k, v := range weights {
			s.Weights[strings.TrimSpace(k)] = v
		}
		return nil
	})
}

// Replace sets the current cycle and replaces the whole weight table.
// Empty arguments leave the corresponding value untouched.
func (m *Manager) Replace(cycle string, weights map[string]int) (*model.Settings, error) {
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	cycle = strings.TrimSpace(cycle)
	return m.update(func(s *model.Settings) error {
		if cycle != "" {
			s.CurrentCycle = cycle
		}
		if weights != nil {
			s.Weights = make(model.CycleWeights, len(weights))
			for k, v := range weights {
				s.Weights[strings.TrimSpace(k)] = v
			}
		}
		return nil
	})
}

func checkWeights(weights map[string]int) error {
	for k, v := range weights {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: empty cycle id", ErrInvalidWeight)
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidWeight, k, v)
		}
	}
	return nil
}

// SetRewardMessage publishes a new active reward message.
func (m *Manager) SetRewardMessage(title, text string) (*model.RewardMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultRewardTitle
	}
	s, err := m.update(func(s *model.Settings) error {
		s.RewardMessage = &model.RewardMessage{
			Title:     title,
			Text:      text,
			Active:    true,
			CreatedAt: m.now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.RewardMessage, nil
}

// ClearRewardMessage removes the reward message.
func (m *Manager) ClearRewardMessage() error {
	_, err := m.update(func(s *model.Settings) error {
		s.RewardMessage = nil
		return nil
	})
	return err
}

// SlackPatch partial update of the Slack settings; nil fields are kept.
type SlackPatch struct {
	Enabled              *bool             `json:"enabled"`
	TestMode             *bool             `json:"testMode"`
	RiskThresholdPercent *float64          `json:"riskThresholdPercent"`
	SendWhenZero         *bool             `json:"sendWhenZero"`
	SupervisorsBySector  map[string]string `json:"supervisoresPorSetor"`
}

// UpdateSlack applies a partial Slack settings update.
func (m *Manager) UpdateSlack(p SlackPatch) (*model.Settings, error) {
	return m.update(func(s *model.Settings) error {
		if p.Enabled != nil {
			s.Slack.Enabled = *p.Enabled
		}
		if p.TestMode != nil {
			s.Slack.TestMode = *p.TestMode
		}
		if p.RiskThresholdPercent != nil {
			s.Slack.RiskThresholdPercent = *p.RiskThresholdPercent
		}
		if p.SendWhenZero != nil {
			s.Slack.SendWhenZero = *p.SendWhenZero
		}
		if p.SupervisorsBySector != nil {
			s.Slack.SupervisorsBySector = make(map[string]string, len(p.SupervisorsBySector))
			for k, v := range p.SupervisorsBySector {
				s.Slack.SupervisorsBySector[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
		return nil
	})
}
