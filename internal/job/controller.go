// Package job holds the active analysis job and advances it one district at
// a time, so a rate-limited multi-second pipeline can be driven by repeated
// short calls instead of one long blocking one.
package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/streetsignal/streetsignal/internal/model"
)

var (
	// ErrInvalidJobSpec is returned when a job is started with no valid
	// districts.
	ErrInvalidJobSpec = eris.New("job: no valid districts provided")

	// ErrNoActiveJob is returned when Advance is called with no job started.
	ErrNoActiveJob = eris.New("job: no active job")
)

// State is the controller's lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// Processor runs the pipeline for a single district. It never fails: a
// district's failure is reported inside its Result.
type Processor interface {
	Process(ctx context.Context, district string, params model.Params) model.Result
}

// Job is the single active batch: an ordered district list, shared
// parameters, the cursor of the next unprocessed district and the results
// produced so far (append-only, in submission order).
type Job struct {
	ID        string
	Districts []string
	Params    model.Params
	CreatedAt time.Time

	cursor  int
	results []model.Result
}

// Progress reports the controller's position after a mutation or snapshot.
type Progress struct {
	JobID     string        `json:"job_id"`
	State     State         `json:"state"`
	Completed bool          `json:"completed"`
	Processed int           `json:"processed"`
	Total     int           `json:"total"`
	Latest    *model.Result `json:"result,omitempty"`
}

// Controller owns the process-wide active job. All mutations are serialized
// by one mutex; Advance holds it for the full duration of a district's
// pipeline, which also serializes the external calls underneath.
type Controller struct {
	mu        sync.Mutex
	processor Processor
	job       *Job
}

// NewController creates an idle Controller.
func NewController(p Processor) *Controller {
	return &Controller{processor: p}
}

// Start creates a new job from the district list, replacing any prior job
// regardless of its state. Districts are normalized (trimmed, uppercased)
// and empties dropped; an empty remainder fails with ErrInvalidJobSpec and
// leaves the prior job untouched.
func (c *Controller) Start(districts []string, params model.Params) (jobID string, total int, err error) {
	normalized := model.NormalizeDistricts(districts)
	if len(normalized) == 0 {
		return "", 0, ErrInvalidJobSpec
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.job = &Job{
		ID:        uuid.New().String(),
		Districts: normalized,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
	return c.job.ID, len(normalized), nil
}

// Advance processes the next district, appends its Result and moves the
// cursor. The cursor advances even when the district itself failed. Calling
// Advance on a completed job is a no-op that reports the completed state.
func (c *Controller) Advance(ctx context.Context) (Progress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job == nil {
		return Progress{State: StateIdle}, ErrNoActiveJob
	}
	if c.job.cursor >= len(c.job.Districts) {
		return c.progressLocked(nil), nil
	}

	district := c.job.Districts[c.job.cursor]
	result := c.processor.Process(ctx, district, c.job.Params)

	c.job.results = append(c.job.results, result)
	c.job.cursor++

	return c.progressLocked(&result), nil
}

// Results returns a copy of the results produced so far, in submission order.
func (c *Controller) Results() []model.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job == nil {
		return nil
	}
	out := make([]model.Result, len(c.job.results))
	copy(out, c.job.results)
	return out
}

// ActiveParams returns the active job's parameters, false when Idle.
func (c *Controller) ActiveParams() (model.Params, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job == nil {
		return model.Params{}, false
	}
	return c.job.Params, true
}

// Snapshot reports the current state without mutating anything.
func (c *Controller) Snapshot() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job == nil {
		return Progress{State: StateIdle}
	}
	return c.progressLocked(nil)
}

// Reset discards the active job from any state. It does not abort an
// in-flight Advance; the discarded job simply stops being reachable.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.job = nil
}

func (c *Controller) progressLocked(latest *model.Result) Progress {
	total := len(c.job.Districts)
	completed := c.job.cursor >= total

	state := StateRunning
	if completed {
		state = StateCompleted
	}

	return Progress{
		JobID:     c.job.ID,
		State:     state,
		Completed: completed,
		Processed: c.job.cursor,
		Total:     total,
		Latest:    latest,
	}
}
