package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// maxPollFailures is the number of consecutive getUpdates failures tolerated
// before a session is torn down.
const maxPollFailures = 3

var ErrPollingStalled = errors.New("telegram polling stalled")

// BotSession is one connected bot. Start blocks until Stop is called.
type BotSession interface {
	Start()
	Stop()
	Healthy() bool
}

// Connector builds a session. trip must be called when polling gives up.
type Connector func(trip func(error)) (BotSession, error)

type SupervisorOptions struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Supervisor keeps a bot session running, reconnecting with exponential
// backoff. A session that polled successfully before failing starts a fresh
// retry budget.
type Supervisor struct {
	logger  *zap.Logger
	connect Connector
	opts    SupervisorOptions
}

func NewSupervisor(logger *zap.Logger, connect Connector, opts SupervisorOptions) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = 5
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 5 * time.Second
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = time.Minute
	}
	return &Supervisor{logger: logger.Named("supervisor"), connect: connect, opts: opts}
}

// Run returns nil once ctx is cancelled, or the last error after the retry
// budget is spent.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			return struct{}{}, s.session(ctx)
		}, s.retryOptions()...)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.logger.Error("telegram reconnect attempts exhausted, bot stays offline",
				zap.Uint("max_tries", s.opts.MaxTries), zap.Error(err))
			return err
		}
		s.logger.Info("telegram session ended after healthy polling, reconnecting")
	}
}

func (s *Supervisor) retryOptions() []backoff.RetryOption {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.opts.InitialInterval
	eb.Multiplier = 2
	eb.MaxInterval = s.opts.MaxInterval

	return []backoff.RetryOption{
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(s.opts.MaxTries),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("telegram connection lost, retrying", zap.Duration("retry_in", next), zap.Error(err))
		}),
	}
}

func (s *Supervisor) session(ctx context.Context) error {
	tripped := make(chan error, 1)
	sess, err := s.connect(func(err error) {
		select {
		case tripped <- err:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("connect telegram: %w", err)
	}

	done := make(chan struct{})
	go func() {
		sess.Start()
		close(done)
	}()
	s.logger.Info("telegram bot polling")

	select {
	case <-ctx.Done():
		sess.Stop()
		<-done
		return nil
	case err := <-tripped:
		sess.Stop()
		<-done
		if sess.Healthy() {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrPollingStalled, err)
	}
}

type updatesFetcher func(b *tele.Bot, offset int, timeout time.Duration) ([]tele.Update, error)

// watchdogPoller long-polls getUpdates and trips after more than
// maxPollFailures consecutive errors. Any successful poll resets the count.
type watchdogPoller struct {
	timeout time.Duration
	pause   time.Duration
	trip    func(error)
	fetch   updatesFetcher

	lastID   int
	failures int
	served   atomic.Bool
	tripOnce sync.Once
}

func newWatchdogPoller(timeout time.Duration, trip func(error)) *watchdogPoller {
	return &watchdogPoller{timeout: timeout, pause: time.Second, trip: trip, fetch: fetchUpdates}
}

func (p *watchdogPoller) Poll(b *tele.Bot, dest chan tele.Update, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		updates, err := p.fetch(b, p.lastID+1, p.timeout)
		if err != nil {
			p.failures++
			if p.failures > maxPollFailures {
				p.tripOnce.Do(func() { p.trip(err) })
				<-stop
				return
			}
			select {
			case <-stop:
				return
			case <-time.After(p.pause):
			}
			continue
		}
		p.failures = 0
		p.served.Store(true)

		for _, u := range updates {
			p.lastID = u.ID
			select {
			case dest <- u:
			case <-stop:
				return
			}
		}
	}
}

func (p *watchdogPoller) Healthy() bool {
	return p.served.Load()
}

func fetchUpdates(b *tele.Bot, offset int, timeout time.Duration) ([]tele.Update, error) {
	data, err := b.Raw("getUpdates", map[string]string{
		"offset":  strconv.Itoa(offset),
		"timeout": strconv.Itoa(int(timeout / time.Second)),
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Result []tele.Update `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return resp.Result, nil
}

type teleSession struct {
	*tele.Bot
	poller *watchdogPoller
}

func (s teleSession) Healthy() bool {
	return s.poller.Healthy()
}
