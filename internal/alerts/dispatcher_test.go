package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduardocaduuu/SupervisionDash/internal/model"
	"github.com/eduardocaduuu/SupervisionDash/internal/service/risk"
	"github.com/eduardocaduuu/SupervisionDash/internal/store"
)

type sentDM struct {
	user string
	msg  Message
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentDM
	fail map[string]error
}

func (f *fakeSender) SendDM(_ context.Context, userID string, msg Message) (Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[userID]; err != nil {
		return Delivery{}, err
	}
	f.sent = append(f.sent, sentDM{user: userID, msg: msg})
	return Delivery{Channel: "D" + userID, Timestamp: "1.0"}, nil
}

type fakeRisk map[string]int

func (f fakeRisk) Summary(sectorID string, threshold float64) risk.Summary {
	return risk.Summary{SectorID: sectorID, RiskCount: f[sectorID], TotalDealers: 10, Threshold: threshold}
}

type fakeSettings struct{ s *model.Settings }

func (f fakeSettings) Get() *model.Settings { return f.s.Clone() }

type fakeSectors []model.Sector

func (f fakeSectors) Sectors() []model.Sector { return f }

type fakeRecorder struct {
	logs []store.AlertLog
}

func (f *fakeRecorder) RecordAlert(_ context.Context, a store.AlertLog) error {
	f.logs = append(f.logs, a)
	return nil
}

func sectors(n int) fakeSectors {
	out := make(fakeSectors, n)
	for i := range out {
		out[i] = model.Sector{ID: string(rune('a' + i))}
	}
	return out
}

type harness struct {
	d      *Dispatcher
	sender *fakeSender
	rec    *fakeRecorder
	sleeps []time.Duration
	now    time.Time
}

func newHarness(t *testing.T, settings *model.Settings, riskCounts fakeRisk, testUser string) *harness {
	t.Helper()
	h := &harness{
		sender: &fakeSender{},
		rec:    &fakeRecorder{},
		now:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	h.d = NewDispatcher(h.sender, riskCounts, fakeSettings{settings}, sectors(7), h.rec, Config{
		TestUserID: testUser,
		Pacing:     DefaultPacing,
		Location:   time.UTC,
	})
	h.d.now = func() time.Time { return h.now }
	h.d.sleep = func(_ context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return nil
	}
	return h
}

func enabledSettings() *model.Settings {
	s := model.DefaultSettings()
	s.Slack.Enabled = true
	return s
}

func TestRun_TestModeLimitsSectorsAndUsesTestUser(t *testing.T) {
	h := newHarness(t, enabledSettings(), fakeRisk{"a": 2, "b": 0, "c": 1, "d": 3, "e": 1, "f": 9}, "UTEST")

	report, err := h.d.Run(context.Background(), "monday-09")
	require.NoError(t, err)
	assert.Equal(t, "test", report.Mode)
	assert.Len(t, report.Results, TestModeSectorLimit)
	assert.Equal(t, 4, report.Sent)
	assert.Equal(t, 1, report.Skipped, "zero-risk sector skipped")
	assert.Equal(t, 0, report.Failed)

	for _, dm := range h.sender.sent {
		assert.Equal(t, "UTEST", dm.user)
	}
	assert.Equal(t, []time.Duration{DefaultPacing, DefaultPacing, DefaultPacing, DefaultPacing}, h.sleeps)
	assert.Len(t, h.rec.logs, 5)
	assert.Equal(t, store.AlertSkipped, h.rec.logs[1].Status)
	assert.Equal(t, report.RunID, h.rec.logs[0].RunID)
}

func TestRun_TestModeWithoutTestUserFails(t *testing.T) {
	h := newHarness(t, enabledSettings(), fakeRisk{"a": 1}, "")

	report, err := h.d.Run(context.Background(), "friday-17")
	require.NoError(t, err)
	assert.Equal(t, 5, report.Failed)
	assert.Equal(t, ErrNoTestUser.Error(), report.Results[0].Error)
	assert.Empty(t, h.sender.sent)
}

func TestRun_ProductionOnlyMappedSectors(t *testing.T) {
	s := enabledSettings()
	s.Slack.TestMode = false
	s.Slack.SendWhenZero = true
	s.Slack.SupervisorsBySector = map[string]string{"b": "UB", "a": "UA", "z": "UZ"}
	h := newHarness(t, s, fakeRisk{"a": 1}, "UTEST")
	h.sender.fail = map[string]error{"UZ": errors.New("channel_not_found")}

	report, err := h.d.Run(context.Background(), "monday-17")
	require.NoError(t, err)
	assert.Equal(t, "production", report.Mode)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "a", report.Results[0].SectorID)
	assert.Equal(t, 2, report.Sent, "zero-risk sector still sent with sendWhenZero")
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "UA", h.sender.sent[0].user)
	assert.Equal(t, store.AlertFailed, h.rec.logs[2].Status)
	assert.Equal(t, "channel_not_found", h.rec.logs[2].ErrorMessage)
}

func TestRun_DisabledOrNoToken(t *testing.T) {
	h := newHarness(t, model.DefaultSettings(), fakeRisk{}, "UTEST")
	report, err := h.d.Run(context.Background(), "monday-09")
	require.NoError(t, err)
	assert.Equal(t, "slack alerts disabled", report.Reason)
	assert.Empty(t, report.Results)

	h = newHarness(t, enabledSettings(), fakeRisk{}, "UTEST")
	h.d.sender = nil
	report, err = h.d.Run(context.Background(), "monday-09")
	require.NoError(t, err)
	assert.Equal(t, ErrNoToken.Error(), report.Reason)
}

func TestRun_PerMinuteLock(t *testing.T) {
	h := newHarness(t, enabledSettings(), fakeRisk{}, "UTEST")
	ctx := context.Background()

	_, err := h.d.Run(ctx, "monday-09")
	require.NoError(t, err)
	_, err = h.d.Run(ctx, "monday-09")
	assert.True(t, errors.Is(err, ErrAlreadyRunning))

	// another job in the same minute is independent
	_, err = h.d.Run(ctx, "manual-trigger")
	assert.NoError(t, err)

	h.now = h.now.Add(time.Minute)
	_, err = h.d.Run(ctx, "monday-09")
	assert.NoError(t, err)

	h.now = h.now.Add(10 * time.Minute)
	_, err = h.d.Run(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, h.d.locks, 1, "stale locks pruned")
}

func TestRun_StopsOnCancelledPacing(t *testing.T) {
	h := newHarness(t, enabledSettings(), fakeRisk{"a": 1, "b": 1, "c": 1}, "UTEST")
	h.d.sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }

	report, err := h.d.Run(context.Background(), "monday-09")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Results, 1)
}

func TestTrigger(t *testing.T) {
	h := newHarness(t, enabledSettings(), fakeRisk{"x": 2}, "UTEST")

	report, err := h.d.Trigger(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "manual-sector", report.Job)
	assert.Equal(t, 1, report.Sent)

	report, err = h.d.Trigger(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "manual-trigger", report.Job)
}

func TestSendTest(t *testing.T) {
	h := newHarness(t, enabledSettings(), fakeRisk{}, "")
	res := h.d.SendTest(context.Background(), "1414")
	assert.False(t, res.OK)

	s := enabledSettings()
	s.Slack.SupervisorsBySector = map[string]string{"1414": "USUP"}
	h = newHarness(t, s, fakeRisk{}, "")
	res = h.d.SendTest(context.Background(), "1414")
	require.True(t, res.OK)
	assert.Equal(t, "USUP", h.sender.sent[0].user)
	assert.Equal(t, "🧪 Teste de alerta Slack para o Setor 1414", h.sender.sent[0].msg.Text)
}
