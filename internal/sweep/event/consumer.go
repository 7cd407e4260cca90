package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgerror"
	"github.com/varoonsolanki/datasweeper/internal/sweep/entity"
)

type Handler interface {
	Handle(ctx context.Context, event entity.ActionEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// HistoryConsumer drains the action-event bus and hands each event to the
// handler, retrying with backoff and suppressing duplicate event IDs.
type HistoryConsumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
}

func NewHistoryConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *HistoryConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 2
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	return &HistoryConsumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

func (c *HistoryConsumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

func (c *HistoryConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *HistoryConsumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *HistoryConsumer) processEvent(event entity.ActionEvent) {
	if c.handler == nil {
		return
	}

	if event.EventID != "" {
		if _, loaded := c.seen.LoadOrStore(event.EventID, struct{}{}); loaded {
			slog.Info("skip duplicate action event", "event_id", event.EventID, "file_id", event.FileID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handler.Handle(context.Background(), event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to record action event after retries",
				"event_id", event.EventID, "file_id", event.FileID, "error", err)
			return
		}

		if !sleepBackoff(backoff) {
			return
		}
		backoff *= 2
	}
}

func sleepBackoff(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C
	return true
}

// HistoryStore is the slice of the session store the recorder needs.
type HistoryStore interface {
	AppendHistory(ctx context.Context, fileID string, event entity.ActionEvent) error
}

// Recorder writes action events into the session's history.
type Recorder struct {
	Store HistoryStore
}

func (r Recorder) Handle(ctx context.Context, event entity.ActionEvent) error {
	if event.EventID == "" {
		return errors.New("missing event id")
	}
	if r.Store == nil {
		return errors.New("missing history store")
	}

	if err := r.Store.AppendHistory(ctx, event.FileID, event); err != nil {
		// The session may be deleted before its last events land; that is
		// not worth retrying.
		if errors.Is(err, pkgerror.ErrNotFound) {
			slog.Info("dropping action event for deleted file", "event_id", event.EventID, "file_id", event.FileID)
			return nil
		}
		return err
	}

	slog.Info("recorded action event",
		"event_id", event.EventID, "file_id", event.FileID, "action", string(event.Kind))
	return nil
}
