package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/chamber-panel/internal/metrics"
	"github.com/rickgao/chamber-panel/internal/protocol"
	"github.com/rickgao/chamber-panel/internal/router"
)

// DB is the subset of *pgxpool.Pool the journal writes through.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Journal buffers entries and writes them in batches.
type Journal struct {
	cfg     Config
	db      DB
	session uuid.UUID
	logger  *slog.Logger
	metrics metrics.Collector

	input chan Entry

	// Batching
	batch   []Entry
	batchMu sync.Mutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// Option configures a Journal.
type Option func(*Journal)

// WithLogger sets the journal logger.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// WithMetrics counts written, failed and dropped entries on c.
func WithMetrics(c metrics.Collector) Option {
	return func(j *Journal) {
		if c != nil {
			j.metrics = c
		}
	}
}

// New creates a journal for one panel session.
func New(cfg Config, db DB, session uuid.UUID, opts ...Option) *Journal {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}

	j := &Journal{
		cfg:     cfg,
		db:      db,
		session: session,
		logger:  slog.Default(),
		metrics: metrics.Noop(),
		input:   make(chan Entry, cfg.BufferSize),
		batch:   make([]Entry, 0, cfg.BatchSize),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Session returns the session ID stamped on every entry.
func (j *Journal) Session() uuid.UUID {
	return j.session
}

// Start begins consuming entries and writing to the database.
func (j *Journal) Start(ctx context.Context) error {
	j.ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.consumeLoop()

	j.logger.Info("journal started",
		"session", j.session,
		"batch_size", j.cfg.BatchSize,
		"flush_interval", j.cfg.FlushInterval,
	)
	return nil
}

// Stop drains buffered entries and writes them before returning.
func (j *Journal) Stop(ctx context.Context) error {
	j.logger.Info("stopping journal")

	if j.cancel != nil {
		j.cancel()
	}

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		j.logger.Warn("journal stop timed out")
		return ctx.Err()
	}

	// Final flush
	j.drain()
	if err := j.flush(ctx); err != nil {
		return fmt.Errorf("final flush: %w", err)
	}

	j.logger.Info("journal stopped", "written", j.Stats().Written)
	return nil
}

// Record queues e without blocking. It reports false when the entry was
// dropped because the buffer is full.
func (j *Journal) Record(e Entry) bool {
	if e.SessionID == uuid.Nil {
		e.SessionID = j.session
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	select {
	case j.input <- e:
		j.count(func(s *Stats) { s.Recorded++ })
		return true
	default:
		j.count(func(s *Stats) { s.Dropped++ })
		j.metrics.AddJournal("dropped", 1)
		return false
	}
}

// ObserveInbound records a routed controller message. It matches
// router.Observer.
func (j *Journal) ObserveInbound(id string, raw json.RawMessage, outcome router.Outcome) {
	j.Record(Entry{
		Direction: Inbound,
		MessageID: id,
		Outcome:   string(outcome),
		Payload:   raw,
	})
}

// ObserveOutbound records a log action handed to the transport. It matches
// actions.SendHook.
func (j *Journal) ObserveOutbound(id protocol.OutboundID, payload []byte, err error) {
	outcome := OutcomeSent
	if err != nil {
		outcome = OutcomeFailed
	}
	j.Record(Entry{
		Direction: Outbound,
		MessageID: string(id),
		Outcome:   outcome,
		Payload:   payload,
	})
}

// Stats returns current counters.
func (j *Journal) Stats() Stats {
	j.statsMu.Lock()
	defer j.statsMu.Unlock()
	return j.stats
}

func (j *Journal) count(fn func(*Stats)) {
	j.statsMu.Lock()
	fn(&j.stats)
	j.statsMu.Unlock()
}

// consumeLoop moves entries into the batch and flushes on size or interval.
func (j *Journal) consumeLoop() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case e := <-j.input:
			if j.add(e) {
				j.flush(j.ctx)
			}
		case <-ticker.C:
			j.flush(j.ctx)
		}
	}
}

// add appends e and reports whether the batch is full.
func (j *Journal) add(e Entry) bool {
	j.batchMu.Lock()
	defer j.batchMu.Unlock()
	j.batch = append(j.batch, e)
	return len(j.batch) >= j.cfg.BatchSize
}

// drain moves everything still buffered into the batch.
func (j *Journal) drain() {
	for {
		select {
		case e := <-j.input:
			j.add(e)
		default:
			return
		}
	}
}

// flush writes the current batch. Failed batches are logged and discarded.
func (j *Journal) flush(ctx context.Context) error {
	j.batchMu.Lock()
	if len(j.batch) == 0 {
		j.batchMu.Unlock()
		return nil
	}

	// Take ownership of current batch
	rows := j.batch
	j.batch = make([]Entry, 0, j.cfg.BatchSize)
	j.batchMu.Unlock()

	start := time.Now()

	if err := j.batchInsert(ctx, rows); err != nil {
		j.logger.Error("journal batch insert failed", "error", err, "count", len(rows))
		j.count(func(s *Stats) { s.Failed += int64(len(rows)) })
		j.metrics.AddJournal("failed", len(rows))
		return err
	}

	j.count(func(s *Stats) {
		s.Written += int64(len(rows))
		s.Flushes++
	})
	j.metrics.AddJournal("written", len(rows))

	j.logger.Debug("flushed journal",
		"count", len(rows),
		"duration", time.Since(start),
	)
	return nil
}

func (j *Journal) batchInsert(ctx context.Context, rows []Entry) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		var payload any
		if len(r.Payload) > 0 {
			payload = string(r.Payload)
		}
		batch.Queue(insertEntry,
			r.SessionID, string(r.Direction), r.MessageID, r.Outcome, payload, r.RecordedAt)
	}

	results := j.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}
