package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	appLog "github.com/sandeepkv93/eventd/internal/log"
	"github.com/sandeepkv93/eventd/internal/model"
)

var ErrPollerStopped = errors.New("scheduler: poller stopped")

const DefaultPollInterval = time.Second

// EventSource supplies the current event set on every evaluation pass.
type EventSource interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
}

type PollerOptions struct {
	Interval   time.Duration
	Location   *time.Location
	BufferSize int
	Now        func() time.Time
}

// Poller re-evaluates the event set on a fixed cadence and emits each
// notification once per session. Sends never block; a full buffer counts as
// a drop.
type Poller struct {
	mu      sync.Mutex
	evalMu  sync.Mutex
	source  EventSource
	opts    PollerOptions
	cron    *cron.Cron
	fired   *FiredSet
	out     chan Notification
	started bool
	stopped bool
	dropped uint64
}

func NewPoller(source EventSource, opts PollerOptions) *Poller {
	if opts.Interval < time.Second {
		opts.Interval = DefaultPollInterval
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Poller{
		source: source,
		opts:   opts,
		cron: cron.New(
			cron.WithLocation(opts.Location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		fired: NewFiredSet(),
		out:   make(chan Notification, opts.BufferSize),
	}
}

func (p *Poller) C() <-chan Notification {
	return p.out
}

func (p *Poller) Fired() *FiredSet {
	return p.fired
}

func (p *Poller) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPollerStopped
	}
	if p.started {
		return nil
	}
	spec := fmt.Sprintf("@every %s", p.opts.Interval)
	if _, err := p.cron.AddFunc(spec, func() { p.Tick(context.Background()) }); err != nil {
		return fmt.Errorf("scheduler: add poll job: %w", err)
	}
	p.started = true
	p.cron.Start()
	appLog.Debug("poller started", "interval", p.opts.Interval)
	return nil
}

// Stop waits for a running pass to finish and closes C. Nothing is emitted
// after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	p.mu.Unlock()

	if started {
		<-p.cron.Stop().Done()
	}

	p.mu.Lock()
	close(p.out)
	p.mu.Unlock()
	appLog.Debug("poller stopped", "dropped", p.Dropped())
}

// Tick runs one evaluation pass synchronously and returns how many
// notifications were emitted.
func (p *Poller) Tick(ctx context.Context) int {
	p.evalMu.Lock()
	defer p.evalMu.Unlock()

	if p.isStopped() {
		return 0
	}
	events, err := p.source.ListEvents(ctx)
	if err != nil {
		appLog.Error("poller list events failed", err)
		return 0
	}
	due, errs := Evaluate(p.opts.Now(), events, p.fired, p.opts.Location)
	for _, e := range errs {
		appLog.Error("poller skipped malformed event", e)
	}
	return p.emit(due)
}

func (p *Poller) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func (p *Poller) emit(due []Notification) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return 0
	}
	sent := 0
	for _, n := range due {
		select {
		case p.out <- n:
			sent++
		default:
			atomic.AddUint64(&p.dropped, 1)
		}
	}
	return sent
}
