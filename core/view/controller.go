// Package view orchestrates the fleet dashboard state. A single goroutine
// owns the State; user actions and fetch completions are serialized through
// one inbox and every state change publishes a derived View.
package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/fleethealth/core/fault"
	"github.com/kilianp07/fleethealth/core/filter"
	"github.com/kilianp07/fleethealth/core/logger"
	"github.com/kilianp07/fleethealth/core/model"
	"github.com/kilianp07/fleethealth/core/monitoring"
	"github.com/kilianp07/fleethealth/internal/eventbus"
)

// Fetch kinds used in metrics, logs and monitor tags.
const (
	KindSnapshot = "snapshot"
	KindScore    = "score"
	KindDetail   = "detail"
)

// Config tunes the controller.
type Config struct {
	Layout Layout
	// RefreshInterval reloads the snapshot periodically; zero disables it.
	RefreshInterval time.Duration
	// FetchTimeout bounds every fetch; zero means no timeout.
	FetchTimeout time.Duration
	InboxSize    int
}

// DefaultConfig returns the dashboard defaults.
func DefaultConfig() Config {
	return Config{
		Layout:          DefaultLayout(),
		RefreshInterval: 5 * time.Minute,
		FetchTimeout:    30 * time.Second,
		InboxSize:       64,
	}
}

// Controller is the sole mutator of the dashboard State.
type Controller struct {
	src Source
	bus *eventbus.TypedBus[View]
	log logger.Logger
	mon monitoring.Monitor
	cfg Config

	inbox   chan any
	started chan struct{}
	done    chan struct{}
	ctx     context.Context

	state  State
	seq    uint64
	notice string
}

// New creates a Controller publishing on bus. log and mon may be nil.
func New(src Source, bus *eventbus.TypedBus[View], cfg Config, log logger.Logger, mon monitoring.Monitor) *Controller {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = DefaultConfig().InboxSize
	}
	return &Controller{
		src:   src,
		bus:   bus,
		log:   logger.OrNop(log),
		mon:   monitoring.OrNop(mon),
		cfg:   cfg,
		inbox:   make(chan any, cfg.InboxSize),
		started: make(chan struct{}),
		done:    make(chan struct{}),
		ctx:     context.Background(),
		state:   NewState(),
	}
}

// Dispatch queues a for the event loop. It returns false once the
// controller has stopped, or when the inbox is full before Run has started.
// Once Run is going, a full inbox makes Dispatch wait for room.
func (c *Controller) Dispatch(a Action) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.inbox <- a:
		return true
	default:
	}
	select {
	case <-c.started:
	default:
		return false
	}
	select {
	case c.inbox <- a:
		return true
	case <-c.done:
		return false
	}
}

// Run loads the first snapshot and processes actions until ctx is done.
// It must be called at most once.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	c.ctx = ctx
	close(c.started)
	c.startSnapshot()
	c.publish()

	var tick <-chan time.Time
	if c.cfg.RefreshInterval > 0 {
		t := time.NewTicker(c.cfg.RefreshInterval)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			c.log.Debugf("periodic snapshot refresh")
			c.startSnapshot()
			c.publish()
		case m := <-c.inbox:
			if c.handle(m) {
				c.publish()
			}
		}
	}
}

func (c *Controller) handle(m any) bool {
	switch m := m.(type) {
	case SelectGrade:
		g, err := filter.ParseGrade(m.Grade)
		if err != nil {
			c.notice = err.Error()
			return true
		}
		f := c.state.Filter
		f.Grade = g
		return c.applyFilter(f)
	case SetCarType:
		f := c.state.Filter
		f.CarType = carTypeOrAll(m.CarType)
		return c.applyFilter(f)
	case SetFilters:
		g, err := filter.ParseGrade(m.Grade)
		if err != nil {
			c.notice = err.Error()
			return true
		}
		f := c.state.Filter
		f.Grade = g
		f.CarType = carTypeOrAll(m.CarType)
		return c.applyFilter(f)
	case SetSearch:
		if c.state.Filter.Search == m.Text {
			return false
		}
		c.state.Filter.Search = m.Text
		return true
	case SelectVehicle:
		return c.selectVehicle(strings.TrimSpace(m.ID))
	case DismissDetail:
		return c.closeDetail()
	case BackdropClick:
		ph := c.state.Detail.Phase
		if (ph == DetailShown || ph == DetailError) && !c.cfg.Layout.DetailContent.Contains(m.At) {
			return c.closeDetail()
		}
		return false
	case Refresh:
		c.startSnapshot()
		return true
	case snapshotLoaded:
		return c.onSnapshot(m)
	case scoreLoaded:
		return c.onScore(m)
	case detailLoaded:
		return c.onDetail(m)
	default:
		c.log.Warnf("unknown message %T", m)
		return false
	}
}

func carTypeOrAll(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return filter.All
	}
	return s
}

// applyFilter stores f and starts one scoped score fetch when the server
// side part of the filter changed.
func (c *Controller) applyFilter(f filter.State) bool {
	if f == c.state.Filter {
		return false
	}
	c.state.Filter = f
	if q := f.Query(); q != c.state.lastScoreQuery {
		c.state.lastScoreQuery = q
		c.startScore(q)
	}
	return true
}

func (c *Controller) selectVehicle(id string) bool {
	if id == "" {
		return false
	}
	c.state.detailToken++
	c.state.Detail = Detail{Phase: DetailLoading, VehicleID: id}
	tok := c.state.detailToken
	refetchTotal.WithLabelValues(KindDetail).Inc()
	c.spawn(func(ctx context.Context) any {
		d, err := c.src.VehicleDetail(ctx, id)
		return detailLoaded{token: tok, id: id, detail: d, err: err}
	}, func(err error) any {
		return detailLoaded{token: tok, id: id, err: err}
	})
	return true
}

func (c *Controller) closeDetail() bool {
	if c.state.Detail.Phase == DetailClosed {
		return false
	}
	if c.state.Detail.Phase == DetailLoading {
		c.state.detailToken++
	}
	c.state.Detail = Detail{}
	return true
}

func (c *Controller) startSnapshot() {
	c.state.snapshotToken++
	c.state.snapshotBusy = true
	tok := c.state.snapshotToken
	refetchTotal.WithLabelValues(KindSnapshot).Inc()
	c.spawn(func(ctx context.Context) any {
		st, err := c.src.Stats(ctx, model.StatsQuery{})
		return snapshotLoaded{token: tok, stats: st, err: err}
	}, func(err error) any {
		return snapshotLoaded{token: tok, err: err}
	})
}

func (c *Controller) startScore(q model.StatsQuery) {
	c.state.scoreToken++
	c.state.scoreBusy = true
	tok := c.state.scoreToken
	refetchTotal.WithLabelValues(KindScore).Inc()
	c.log.Debugw("scoped score refetch", map[string]any{"car_type": q.CarType, "grade": q.Grade})
	c.spawn(func(ctx context.Context) any {
		st, err := c.src.Stats(ctx, q)
		return scoreLoaded{token: tok, query: q, stats: st, err: err}
	}, func(err error) any {
		return scoreLoaded{token: tok, query: q, err: err}
	})
}

// spawn runs fetch in its own goroutine and posts the result to the inbox.
// A panicking fetch is turned into a failed completion.
func (c *Controller) spawn(fetch func(context.Context) any, failed func(error) any) {
	parent := c.ctx
	timeout := c.cfg.FetchTimeout
	go func() {
		var msg any
		defer func() {
			if r := recover(); r != nil {
				msg = failed(fmt.Errorf("fetch panicked: %v", r))
			}
			c.post(msg)
		}()
		var (
			ctx    context.Context
			cancel context.CancelFunc
		)
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(parent, timeout)
		} else {
			ctx, cancel = context.WithCancel(parent)
		}
		defer cancel()
		msg = fetch(ctx)
	}()
}

func (c *Controller) post(m any) {
	select {
	case c.inbox <- m:
	case <-c.done:
	}
}

func (c *Controller) onSnapshot(m snapshotLoaded) bool {
	if m.token != c.state.snapshotToken {
		staleTotal.WithLabelValues(KindSnapshot).Inc()
		return false
	}
	c.state.snapshotBusy = false
	if m.err != nil {
		c.fail(KindSnapshot, "", m.err)
		return true
	}
	st := m.stats.Normalize()
	c.state.Vehicles = st.Performance.Vehicles
	c.state.Overview = Overview{VehicleTypes: st.VehicleTypes, Completeness: st.Completeness, Dataset: st.Dataset}
	c.state.FleetScore = st.BatteryScore
	c.state.Filter = filter.Default()
	c.state.lastScoreQuery = model.StatsQuery{}
	// the unscoped snapshot score supersedes any scoped fetch in flight
	c.state.scoreToken++
	c.state.scoreBusy = false
	c.state.Loaded = true
	c.log.Infof("snapshot loaded: %d vehicles", len(c.state.Vehicles))
	return true
}

func (c *Controller) onScore(m scoreLoaded) bool {
	if m.token != c.state.scoreToken {
		staleTotal.WithLabelValues(KindScore).Inc()
		return false
	}
	c.state.scoreBusy = false
	if m.err != nil {
		c.fail(KindScore, m.query.CarType+"/"+m.query.Grade, m.err)
		return true
	}
	if b := m.stats.Normalize().BatteryScore; b != nil {
		c.state.FleetScore = b
	}
	return true
}

func (c *Controller) onDetail(m detailLoaded) bool {
	if m.token != c.state.detailToken || c.state.Detail.Phase != DetailLoading {
		staleTotal.WithLabelValues(KindDetail).Inc()
		c.log.Debugf("discarding stale detail for %s", m.id)
		return false
	}
	if m.err != nil {
		c.state.Detail = Detail{Phase: DetailError, VehicleID: m.id, Err: m.err.Error()}
		c.fail(KindDetail, m.id, m.err)
		return true
	}
	d := m.detail.Normalize()
	c.state.Detail = Detail{Phase: DetailShown, VehicleID: m.id, Payload: &d}
	return true
}

func (c *Controller) fail(kind, target string, err error) {
	failureTotal.WithLabelValues(kind, fault.Kind(err)).Inc()
	c.log.Errorf("%s fetch failed: %v", kind, err)
	c.mon.CaptureException(err, monitoring.FetchTags(kind, target, err))
	switch kind {
	case KindDetail:
		c.notice = fmt.Sprintf("could not load vehicle %s: %v", target, err)
	case KindScore:
		c.notice = fmt.Sprintf("could not refresh battery score statistics: %v", err)
	default:
		c.notice = fmt.Sprintf("could not load fleet data: %v", err)
	}
}

func (c *Controller) publish() {
	c.seq++
	v := Derive(c.state, c.cfg.Layout)
	v.Seq = c.seq
	v.Notice = c.notice
	c.notice = ""
	c.bus.Publish(v)
	publishTotal.Inc()
}
