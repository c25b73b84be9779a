package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultTimezone zone the alert schedule is expressed in
const DefaultTimezone = "America/Maceio"

// Schedule one named cron entry
type Schedule struct {
	Job  string
	Spec string
}

// DefaultSchedules Monday and Friday, 09:00 and 17:00
var DefaultSchedules = []Schedule{
	{Job: "monday-09", Spec: "0 9 * * 1"},
	{Job: "monday-17", Spec: "0 17 * * 1"},
	{Job: "friday-09", Spec: "0 9 * * 5"},
	{Job: "friday-17", Spec: "0 17 * * 5"},
}

// Runner runs one alert job.
type Runner interface {
	Run(ctx context.Context, job string) (*Report, error)
}

// Scheduler runs the alert job on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	loc     *time.Location
	entries map[string]cron.EntryID
}

// NewScheduler registers every schedule against runner in loc.
func NewScheduler(runner Runner, loc *time.Location, schedules []Schedule) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if len(schedules) == 0 {
		schedules = DefaultSchedules
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		loc:     loc,
		entries: make(map[string]cron.EntryID, len(schedules)),
	}
	for _, sc := range schedules {
		job := sc.Job
		id, err := s.cron.AddFunc(sc.Spec, func() {
			_, err := runner.Run(context.Background(), job)
			if err != nil && !errors.Is(err, ErrAlreadyRunning) {
				logger.Errorf("job %s: %v", job, err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %q for %s: %w", sc.Spec, job, err)
		}
		s.entries[job] = id
		logger.Infof("scheduled %s (%s, %s)", job, sc.Spec, loc)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next returns the first run of a job after from.
func (s *Scheduler) Next(job string, from time.Time) (time.Time, bool) {
	id, ok := s.entries[job]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Schedule.Next(from.In(s.loc)), true
}

// LoadLocation resolves a timezone name, falling back to UTC-3.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warnf("unknown timezone %q, using UTC-3: %v", name, err)
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}
