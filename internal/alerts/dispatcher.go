package alerts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/risk"
	"github.com/eduardocaduuu/SupervisionDash/internal/store"
)

const (
	// TestModeSectorLimit sectors alerted per run while in test mode
	TestModeSectorLimit = 5
	// DefaultPacing pause between two sends
	DefaultPacing = 500 * time.Millisecond

	lockTTL = 5 * time.Minute
)

var (
	ErrAlreadyRunning = errors.New("alert job already ran this minute")
	ErrNoTestUser     = errors.New("test mode is on but no test user is configured")
	ErrNoSupervisor   = errors.New("no supervisor mapped for sector")
)

var logger = log.New("alerts")

// RiskSummarizer produces the risk summary of a sector.
type RiskSummarizer interface {
	Summary(sectorID string, threshold float64) risk.Summary
}

// SettingsSource exposes the current runtime settings.
type SettingsSource interface {
	Get() *model.Settings
}

// SectorLister lists the known sectors.
type SectorLister interface {
	Sectors() []model.Sector
}

// Recorder persists alert outcomes.
type Recorder interface {
	RecordAlert(ctx context.Context, a store.AlertLog) error
}

// Result outcome of one sector
type Result struct {
	SectorID  string `json:"setorId"`
	UserID    string `json:"userId,omitempty"`
	RiskCount int    `json:"riskCount"`
	OK        bool   `json:"ok"`
	Skipped   bool   `json:"skipped,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Timestamp string `json:"ts,omitempty"`
}

// Report outcome of one alert run
type Report struct {
	RunID   string   `json:"runId"`
	Job     string   `json:"job"`
	Mode    string   `json:"mode,omitempty"`
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
	// Reason set when the run did nothing
	Reason string `json:"reason,omitempty"`
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch {
	case !res.OK:
		r.Failed++
	case res.Skipped:
		r.Skipped++
	default:
		r.Sent++
	}
}

// Config static dispatcher configuration
type Config struct {
	TestUserID string
	Pacing     time.Duration
	Location   *time.Location
}

// Dispatcher decides who receives which risk alert and sends it.
type Dispatcher struct {
	sender   Sender
	risk     RiskSummarizer
	settings SettingsSource
	sectors  SectorLister
	recorder Recorder

	testUserID string
	pacing     time.Duration
	loc        *time.Location
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	locks map[string]time.Time
}

// NewDispatcher wires a dispatcher. A nil sender means no bot token is
// configured; a nil recorder disables alert history.
func NewDispatcher(sender Sender, riskSvc RiskSummarizer, settings SettingsSource, sectors SectorLister, recorder Recorder, cfg Config) *Dispatcher {
	pacing := cfg.Pacing
	if pacing < 0 {
		pacing = 0
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Dispatcher{
		sender:     sender,
		risk:       riskSvc,
		settings:   settings,
		sectors:    sectors,
		recorder:   recorder,
		testUserID: cfg.TestUserID,
		pacing:     pacing,
		loc:        loc,
		now:        time.Now,
		sleep:      sleepCtx,
		locks:      make(map[string]time.Time),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// acquire takes the per-minute lock of a job and prunes stale locks.
func (d *Dispatcher) acquire(job string) bool {
	now := d.now()
	key := job + "-" + now.In(d.loc).Format("2006-01-02-15-04")

	d.mu.Lock()
	defer d.mu.Unlock()
	for k, at := range d.locks {
		if now.Sub(at) > lockTTL {
			delete(d.locks, k)
		}
	}
	if _, held := d.locks[key]; held {
		return false
	}
	d.locks[key] = now
	return true
}

func (d *Dispatcher) recipient(sectorID string, cfg model.SlackSettings) (string, error) {
	if cfg.TestMode {
		if d.testUserID == "" {
			return "", ErrNoTestUser
		}
		return d.testUserID, nil
	}
	if user := cfg.SupervisorsBySector[sectorID]; user != "" {
		return user, nil
	}
	return "", ErrNoSupervisor
}

// SendSector builds and sends the alert of one sector.
func (d *Dispatcher) SendSector(ctx context.Context, sectorID string, cfg model.SlackSettings) Result {
	res := Result{SectorID: sectorID}
	if d.sender == nil {
		res.Error = ErrNoToken.Error()
		return res
	}
	user, err := d.recipient(sectorID, cfg)
	if err != nil {
		logger.Warnf("sector %s: %v", sectorID, err)
		res.Error = err.Error()
		return res
	}
	res.UserID = user

	summary := d.risk.Summary(sectorID, cfg.RiskThresholdPercent)
	res.RiskCount = summary.RiskCount
	if summary.RiskCount == 0 && !cfg.SendWhenZero {
		logger.Infof("sector %s: 0 at risk, sendWhenZero=false, skipping", sectorID)
		res.OK, res.Skipped, res.Reason = true, true, "No dealers at risk"
		return res
	}

	msg := ComposeRiskAlert(summary, d.now().In(d.loc))
	delivery, err := d.sender.SendDM(ctx, user, msg)
	if err != nil {
		logger.Errorf("sector %s: alert to %s failed: %v", sectorID, user, err)
		res.Error = err.Error()
		return res
	}
	logger.Infof("sector %s: alert sent to %s, %d at risk", sectorID, user, summary.RiskCount)
	res.OK, res.Channel, res.Timestamp = true, delivery.Channel, delivery.Timestamp
	return res
}

// Run alerts every eligible sector once. Test mode alerts the first sectors
// to the test user; production alerts every sector with a supervisor.
func (d *Dispatcher) Run(ctx context.Context, job string) (*Report, error) {
	if !d.acquire(job) {
		logger.Infof("job %s already ran this minute, skipping", job)
		return nil, fmt.Errorf("%s: %w", job, ErrAlreadyRunning)
	}

	report := &Report{RunID: uuid.NewString(), Job: job, Results: []Result{}}
	cfg := d.settings.Get().Slack
	switch {
	case !cfg.Enabled:
		report.Reason = "slack alerts disabled"
		logger.Infof("job %s: %s", job, report.Reason)
		return report, nil
	case d.sender == nil:
		report.Reason = ErrNoToken.Error()
		logger.Warnf("job %s: %s", job, report.Reason)
		return report, nil
	}

	var targets []string
	if cfg.TestMode {
		report.Mode = "test"
		for i, s := range d.sectors.Sectors() {
			if i == TestModeSectorLimit {
				break
			}
			targets = append(targets, s.ID)
		}
	} else {
		report.Mode = "production"
		for id := range cfg.SupervisorsBySector {
			targets = append(targets, id)
		}
		sort.Strings(targets)
	}
	if len(targets) == 0 {
		report.Reason = "no sectors to alert"
		logger.Warnf("job %s: %s", job, report.Reason)
		return report, nil
	}

	logger.Infof("job %s: processing %d sectors in %s mode", job, len(targets), report.Mode)
	for i, id := range targets {
		if i > 0 {
			if err := d.sleep(ctx, d.pacing); err != nil {
				return report, err
			}
		}
		res := d.SendSector(ctx, id, cfg)
		report.add(res)
		d.record(ctx, report, res)
	}
	logger.Infof("job %s completed: %d sent, %d skipped, %d failed", job, report.Sent, report.Skipped, report.Failed)
	return report, nil
}

// Trigger runs the alert job now. With a sector id only that sector is
// alerted, bypassing the per-minute lock.
func (d *Dispatcher) Trigger(ctx context.Context, sectorID string) (*Report, error) {
	if sectorID == "" {
		return d.Run(ctx, "manual-trigger")
	}
	report := &Report{RunID: uuid.NewString(), Job: "manual-sector", Results: []Result{}}
	res := d.SendSector(ctx, sectorID, d.settings.Get().Slack)
	report.add(res)
	d.record(ctx, report, res)
	return report, nil
}

// SendTest sends the connectivity test message of a sector to the test
// user, or to the sector's supervisor when no test user is set.
func (d *Dispatcher) SendTest(ctx context.Context, sectorID string) Result {
	res := Result{SectorID: sectorID}
	if d.sender == nil {
		res.Error = ErrNoToken.Error()
		return res
	}
	user := d.testUserID
	if user == "" {
		user = d.settings.Get().Slack.SupervisorsBySector[sectorID]
	}
	if user == "" {
		res.Error = ErrNoTestUser.Error()
		return res
	}
	res.UserID = user
	delivery, err := d.sender.SendDM(ctx, user, ComposeTestMessage(sectorID, d.now().In(d.loc)))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.OK, res.Channel, res.Timestamp = true, delivery.Channel, delivery.Timestamp
	return res
}

func (d *Dispatcher) record(ctx context.Context, report *Report, res Result) {
	if d.recorder == nil {
		return
	}
	status := store.AlertSent
	switch {
	case !res.OK:
		status = store.AlertFailed
	case res.Skipped:
		status = store.AlertSkipped
	}
	err := d.recorder.RecordAlert(ctx, store.AlertLog{
		RunID:        report.RunID,
		Job:          report.Job,
		SectorID:     res.SectorID,
		UserID:       res.UserID,
		RiskCount:    res.RiskCount,
		Status:       status,
		ErrorMessage: res.Error,
		CreatedAt:    d.now().UTC(),
	})
	if err != nil {
		logger.Errorf("failed to record alert for sector %s: %v", res.SectorID, err)
	}
}
