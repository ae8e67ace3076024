// Package daemon runs the long-lived bot process: it owns the update
// loop, the cache sweeper, and the single-instance lock.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"sonarrbot/internal/bot"
	"sonarrbot/internal/config"
	"sonarrbot/internal/logging"
	"sonarrbot/internal/optioncache"
	"sonarrbot/internal/telegram"
)

// UpdateSource streams inbound chat messages. The production source is
// the long-polling Telegram client.
type UpdateSource interface {
	Updates() <-chan telegram.Update
	Stop()
}

// Daemon coordinates the bot's background work and enforces
// single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	cache  *optioncache.Cache
	bot    *bot.Bot
	source UpdateSource

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	fatalErr atomic.Value
	cancel   context.CancelFunc
	done     chan struct{}

	// Per-user FIFO queues. Messages from one user are handled in
	// arrival order by a single drain goroutine; different users
	// proceed independently.
	queueMu sync.Mutex
	queues  map[int64]*userQueue
	wg      sync.WaitGroup
}

// userQueue holds one user's pending updates. busy is true while a
// drain goroutine owns the queue.
type userQueue struct {
	userID  int64
	pending []telegram.Update
	busy    bool
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, cache *optioncache.Cache, b *bot.Bot, source UpdateSource, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || cache == nil || b == nil || source == nil || logger == nil {
		return nil, errors.New("daemon requires config, cache, bot, source, and logger")
	}

	lockPath := filepath.Join(cfg.Bot.StateDir, "sonarrbot.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		cache:    cache,
		bot:      b,
		source:   source,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		queues:   make(map[int64]*userQueue),
	}, nil
}

// Start acquires the instance lock and launches the update loop and
// cache sweeper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another sonarrbot instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	d.cache.StartSweep(d.cfg.CacheSweepInterval())
	go d.loop(runCtx)

	d.running.Store(true)
	d.logger.Info("sonarrbot daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Wait blocks until the update loop exits and returns the fatal error
// that stopped it, if any.
func (d *Daemon) Wait() error {
	if d.done != nil {
		<-d.done
	}
	if err, ok := d.fatalErr.Load().(error); ok {
		return err
	}
	return nil
}

// Stop shuts down the update loop and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.source.Stop()
	if d.cancel != nil {
		d.cancel()
	}
	if d.done != nil {
		<-d.done
	}
	d.cache.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("sonarrbot daemon stopped")
}

func (d *Daemon) loop(ctx context.Context) {
	defer func() {
		d.wg.Wait()
		close(d.done)
	}()

	updates := d.source.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			d.enqueue(ctx, update)
		}
	}
}

// enqueue appends the update to its user's queue and starts a drain
// goroutine when none is running. A slow remote call stalls only the
// issuing user's queue; a burst of same-user messages (a long-poll
// batch delivers several at once) is handled in arrival order.
func (d *Daemon) enqueue(ctx context.Context, update telegram.Update) {
	d.wg.Add(1)

	d.queueMu.Lock()
	q := d.queues[update.UserID]
	if q == nil {
		q = &userQueue{userID: update.UserID}
		d.queues[update.UserID] = q
	}
	q.pending = append(q.pending, update)
	start := !q.busy
	if start {
		q.busy = true
	}
	d.queueMu.Unlock()

	if start {
		go d.drain(ctx, q)
	}
}

// drain handles the queue's updates in order until it is empty, then
// drops the queue from the map so idle users do not accumulate.
func (d *Daemon) drain(ctx context.Context, q *userQueue) {
	for {
		d.queueMu.Lock()
		if len(q.pending) == 0 {
			q.busy = false
			delete(d.queues, q.userID)
			d.queueMu.Unlock()
			return
		}
		update := q.pending[0]
		q.pending = q.pending[1:]
		d.queueMu.Unlock()

		d.handle(ctx, update)
	}
}

func (d *Daemon) handle(ctx context.Context, update telegram.Update) {
	defer d.wg.Done()
	if ctx.Err() != nil {
		return
	}

	if err := d.bot.HandleUpdate(ctx, update); err != nil {
		// The bot only returns an error when the access list could not
		// be persisted; serving on would drift memory from disk.
		d.fatalErr.Store(err)
		d.logger.Error("fatal handler error, shutting down", logging.Error(err))
		d.source.Stop()
		if d.cancel != nil {
			d.cancel()
		}
	}
}
