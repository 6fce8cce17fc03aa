package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/services"
	"github.com/femiolat/blastr/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultPollInterval is the fixed cadence for progress requests.
const DefaultPollInterval = time.Second

// PollState enumerates the poller's lifecycle states.
type PollState int

const (
	Polling PollState = iota
	Done
)

// Poller queries a send job's status at a fixed interval until it reaches a
// terminal state or a fetch fails.
//
// A single failed fetch is fatal: the loop reports the error and stops, no
// retry. The transition from polling to done happens exactly once even under
// duplicate terminal responses or concurrent cancellation.
type Poller struct {
	svc       services.Service
	sendJobID string
	interval  time.Duration

	mu       sync.Mutex
	state    PollState
	stopOnce sync.Once
	done     chan struct{}
}

// NewPoller creates a poller for the given send job. A non-positive interval
// falls back to [DefaultPollInterval].
func NewPoller(svc services.Service, sendJobID string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		svc:       svc,
		sendJobID: sendJobID,
		interval:  interval,
		state:     Polling,
		done:      make(chan struct{}),
	}
}

// State returns the poller's current state.
func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// DoneChan is closed when the poller reaches the done state.
func (p *Poller) DoneChan() <-chan struct{} {
	return p.done
}

// transition is the single authoritative state change. It moves the poller to
// done and reports whether this call performed the transition; every later
// call is a no-op.
func (p *Poller) transition() bool {
	first := false
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.state = Done
		p.mu.Unlock()
		close(p.done)
		first = true
	})
	return first
}

// Run polls the send job until a terminal status, a fetch failure, or context
// cancellation, emitting one update per response. It returns the last
// progress snapshot observed.
func (p *Poller) Run(ctx context.Context, updates chan<- ProgressUpdate) (models.Progress, error) {
	if p.svc == nil {
		return models.Progress{}, fmt.Errorf("%w: broadcast service not initialized", shared.ErrServiceUnavailable)
	}
	if p.sendJobID == "" {
		return models.Progress{}, fmt.Errorf("%w: send job id is empty", shared.ErrInvalidArgument)
	}

	var last models.Progress
	limiter := rate.NewLimiter(rate.Every(p.interval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			p.transition()
			return last, err
		}

		progress, err := p.svc.Progress(ctx, p.sendJobID)
		if err != nil {
			p.transition()
			return last, fmt.Errorf("%w: %v", shared.ErrPollFailed, err)
		}

		last = progress
		sendUpdate(updates, pollUpdate(progress))

		if progress.Terminal() {
			p.transition()
			return progress, nil
		}
	}
}
