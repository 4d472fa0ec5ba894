package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/qrgate/internal/metrics"
	"github.com/allisson/qrgate/internal/scan/domain"
)

// DefaultPresentDuration is how long an outcome stays on display.
const DefaultPresentDuration = 2000 * time.Millisecond

const (
	defaultEventBuffer = 64
	subscriberBuffer   = 8
	metricsDomain      = "scanner"
)

// Config holds controller settings.
type Config struct {
	PresentDuration time.Duration
	// VerifyTimeout bounds one whole verification (fetch plus invalidate). Zero
	// leaves the bound to the token store's own per-request timeout.
	VerifyTimeout  time.Duration
	HistoryEnabled bool
	HistorySize    int
	// AutoRestart starts scanning again when a presentation ends.
	AutoRestart bool
	EventBuffer int
}

type eventKind int

const (
	eventStart eventKind = iota
	eventStop
	eventSnapshot
	eventDecoded
	eventVerified
	eventPresentDone
	eventSourceFailed
)

type reply struct {
	snapshot domain.Snapshot
	err      error
}

type event struct {
	kind       eventKind
	generation uint64
	attempt    uint64
	text       string
	result     domain.ScanResult
	err        error
	reply      chan reply
}

// Controller is the scan session state machine. All state is owned by the
// goroutine running Run; every other method talks to it over the event channel,
// so transitions are serialized and never run concurrently.
type Controller struct {
	cfg     Config
	store   TokenStore
	source  DecodeSource
	cache   *TokenCache
	journal Journal
	metrics metrics.BusinessMetrics
	logger  *slog.Logger
	now     func() time.Time

	events chan event
	done   chan struct{}
	once   sync.Once

	subMu       sync.Mutex
	subscribers map[int]chan domain.Snapshot
	nextSubID   int

	verifyWG sync.WaitGroup

	// Owned by the Run goroutine.
	runCtx        context.Context
	state         domain.State
	sourceHandle  domain.SourceHandle
	sourceRunning bool
	sourceErr     string
	generation    uint64
	attempt       uint64
	lastScanned   domain.Token
	current       *domain.ScanResult
	history       *domain.History
	admitted      int64
	version       uint64
	presentTimer  *time.Timer
}

// NewController creates a Controller in the Idle state. journal and
// businessMetrics may be nil.
func NewController(
	cfg Config,
	store TokenStore,
	source DecodeSource,
	cache *TokenCache,
	journal Journal,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *Controller {
	if cfg.PresentDuration <= 0 {
		cfg.PresentDuration = DefaultPresentDuration
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}
	if cache == nil {
		cache = NewTokenCache()
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Controller{
		cfg:         cfg,
		store:       store,
		source:      source,
		cache:       cache,
		journal:     journal,
		metrics:     businessMetrics,
		logger:      logger,
		now:         time.Now,
		events:      make(chan event, cfg.EventBuffer),
		done:        make(chan struct{}),
		subscribers: make(map[int]chan domain.Snapshot),
		state:       domain.StateIdle,
	}
	if cfg.HistoryEnabled {
		c.history = domain.NewHistory(cfg.HistorySize)
	}
	return c
}

// Run processes events until ctx is cancelled. On exit the decode source is
// stopped and any in-flight verification is cancelled and awaited.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	c.seedAdmitted(ctx)
	c.publish()

	c.logger.Info("scan controller started",
		slog.Duration("present_duration", c.cfg.PresentDuration),
		slog.Bool("history_enabled", c.cfg.HistoryEnabled),
		slog.Bool("auto_restart", c.cfg.AutoRestart),
	)

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case ev := <-c.events:
			c.dispatch(ev)
		}
	}
}

// StartScanning starts the decode source. It is only allowed while Idle.
func (c *Controller) StartScanning(ctx context.Context) error {
	r, err := c.request(ctx, eventStart)
	if err != nil {
		return err
	}
	return r.err
}

// StopScanning stops the decode source. It is a no-op outside Scanning.
func (c *Controller) StopScanning(ctx context.Context) error {
	r, err := c.request(ctx, eventStop)
	if err != nil {
		return err
	}
	return r.err
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	r, err := c.request(ctx, eventSnapshot)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return r.snapshot, r.err
}

// Subscribe returns a channel receiving a snapshot after every transition and
// a function to cancel the subscription. Slow subscribers only miss
// intermediate snapshots; the newest one is always delivered.
func (c *Controller) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, subscriberBuffer)

	c.subMu.Lock()
	select {
	case <-c.done:
		c.subMu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
}

func (c *Controller) request(ctx context.Context, kind eventKind) (reply, error) {
	ev := event{kind: kind, reply: make(chan reply, 1)}

	select {
	case c.events <- ev:
	case <-c.done:
		return reply{}, domain.ErrControllerStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}

	select {
	case r := <-ev.reply:
		return r, nil
	case <-c.done:
		return reply{}, domain.ErrControllerStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

// post delivers an internal event, giving up once the controller has stopped.
func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// postDecoded never blocks: the decode source may be waiting on Stop from the
// Run goroutine, and decodes are disposable outside Scanning anyway.
func (c *Controller) postDecoded(generation uint64, text string) {
	select {
	case c.events <- event{kind: eventDecoded, generation: generation, text: text}:
	case <-c.done:
	default:
		c.logger.Warn("decode event dropped, controller busy")
	}
}

// postSourceFailed must not block either, but unlike a decode the failure may
// not be lost, so a full queue hands it to a goroutine.
func (c *Controller) postSourceFailed(generation uint64, err error) {
	ev := event{kind: eventSourceFailed, generation: generation, err: err}
	select {
	case c.events <- ev:
	case <-c.done:
	default:
		go c.post(ev)
	}
}

func (c *Controller) dispatch(ev event) {
	switch ev.kind {
	case eventStart:
		ev.reply <- reply{err: c.onStart()}
	case eventStop:
		ev.reply <- reply{err: c.onStop()}
	case eventSnapshot:
		ev.reply <- reply{snapshot: c.snapshot()}
	case eventDecoded:
		c.onDecoded(ev.generation, ev.text)
	case eventVerified:
		c.onVerified(ev.attempt, ev.result)
	case eventPresentDone:
		c.onPresentDone(ev.attempt)
	case eventSourceFailed:
		c.onSourceFailed(ev.generation, ev.err)
	}
}

func (c *Controller) onStart() error {
	if c.state != domain.StateIdle {
		return domain.ErrInvalidTransition
	}
	return c.startSource()
}

func (c *Controller) startSource() error {
	c.stopSource()

	c.generation++
	generation := c.generation
	handle, err := c.source.Start(c.runCtx,
		func(text string) { c.postDecoded(generation, text) },
		func(err error) { c.postSourceFailed(generation, err) },
	)
	if err != nil {
		var sourceErr *domain.DecodeSourceError
		if !errors.As(err, &sourceErr) {
			err = &domain.DecodeSourceError{Err: err}
		}
		c.sourceErr = err.Error()
		c.metrics.RecordOperation(c.runCtx, metricsDomain, "start", "error")
		c.logger.Error("failed to start decode source", slog.Any("error", err))
		c.publish()
		return err
	}

	c.sourceHandle = handle
	c.sourceRunning = true
	c.sourceErr = ""
	c.state = domain.StateScanning
	c.metrics.RecordOperation(c.runCtx, metricsDomain, "start", "success")
	c.logger.Info("scanning started")
	c.publish()
	return nil
}

func (c *Controller) stopSource() {
	if !c.sourceRunning {
		return
	}
	if err := c.source.Stop(c.sourceHandle); err != nil {
		c.logger.Warn("failed to stop decode source", slog.Any("error", err))
	}
	c.sourceRunning = false
	c.sourceHandle = 0
}

func (c *Controller) onStop() error {
	if c.state != domain.StateScanning {
		return nil
	}
	c.stopSource()
	c.state = domain.StateIdle
	c.metrics.RecordOperation(c.runCtx, metricsDomain, "stop", "success")
	c.logger.Info("scanning stopped")
	c.publish()
	return nil
}

// onSourceFailed handles a device that broke while scanning. The session goes
// back to Idle with a persistent error until the next successful start.
func (c *Controller) onSourceFailed(generation uint64, err error) {
	if generation != c.generation || !c.sourceRunning {
		c.logger.Debug("stale decode source failure ignored", slog.Any("error", err))
		return
	}

	var sourceErr *domain.DecodeSourceError
	if !errors.As(err, &sourceErr) {
		err = &domain.DecodeSourceError{Err: err}
	}

	c.stopSource()
	c.state = domain.StateIdle
	c.sourceErr = err.Error()
	c.metrics.RecordOperation(c.runCtx, metricsDomain, "source", "error")
	c.logger.Error("decode source failed", slog.Any("error", err))
	c.publish()
}

func (c *Controller) onDecoded(generation uint64, text string) {
	if c.state != domain.StateScanning || generation != c.generation {
		c.logger.Debug("decode event ignored",
			slog.String("state", string(c.state)),
			slog.Bool("stale", generation != c.generation),
		)
		return
	}

	token := domain.NormalizeToken(text)
	if token == "" {
		return
	}

	c.lastScanned = token
	c.state = domain.StateVerifying
	c.stopSource()

	c.attempt++
	attempt := c.attempt
	c.logger.Info("verifying token", slog.String("token_fingerprint", domain.Fingerprint(token)))
	c.publish()

	// Derived from the Run context, so shutdown cancels it.
	var (
		verifyCtx context.Context
		cancel    context.CancelFunc
	)
	if c.cfg.VerifyTimeout > 0 {
		verifyCtx, cancel = context.WithTimeout(c.runCtx, c.cfg.VerifyTimeout)
	} else {
		verifyCtx, cancel = context.WithCancel(c.runCtx)
	}

	c.verifyWG.Add(1)
	go func() {
		defer c.verifyWG.Done()
		defer cancel()

		result := c.verify(verifyCtx, token)
		c.post(event{kind: eventVerified, attempt: attempt, result: result})

		if result.Outcome.IsAdmitted() {
			if err := c.cache.Refresh(verifyCtx, c.store); err != nil && verifyCtx.Err() == nil {
				c.logger.Warn("token refresh after invalidate failed", slog.Any("error", err))
			}
		}
	}()
}

// verify fetches a fresh token list, never the cache, and consumes the token
// when it is a member.
func (c *Controller) verify(ctx context.Context, token domain.Token) domain.ScanResult {
	result := domain.ScanResult{ID: newScanID(), Token: token}
	fingerprint := slog.String("token_fingerprint", domain.Fingerprint(token))

	tokens, err := c.store.ListTokens(ctx)
	if err != nil {
		c.logger.Error("token fetch failed", fingerprint, slog.Any("error", err))
		result.Outcome = domain.OutcomeVerificationFailed
		result.Err = err
		result.At = c.now()
		return result
	}

	if !tokens.Contains(token) {
		result.Outcome = domain.OutcomeInvalid
		result.At = c.now()
		return result
	}

	if err := c.store.Invalidate(ctx, token); err != nil {
		var invalidateErr *domain.InvalidateError
		if errors.As(err, &invalidateErr) && invalidateErr.Ambiguous {
			c.logger.Warn("invalidate outcome ambiguous", fingerprint, slog.Any("error", err))
		} else {
			c.logger.Error("invalidate failed", fingerprint, slog.Any("error", err))
		}
		result.Outcome = domain.OutcomeVerificationFailed
		result.Err = err
		result.At = c.now()
		return result
	}

	result.Outcome = domain.OutcomeValid
	result.At = c.now()
	return result
}

func (c *Controller) onVerified(attempt uint64, result domain.ScanResult) {
	if c.state != domain.StateVerifying || attempt != c.attempt {
		return
	}
	c.state = domain.StatePresenting
	c.current = &result
	if c.history != nil {
		c.history.Add(domain.HistoryEntry{Token: result.Token, Outcome: result.Outcome, At: result.At})
	}
	if result.Outcome.IsAdmitted() {
		c.admitted++
	}

	c.metrics.RecordScan(c.runCtx, string(result.Outcome))
	c.logger.Info("scan completed",
		slog.String("scan_id", result.ID.String()),
		slog.String("token_fingerprint", domain.Fingerprint(result.Token)),
		slog.String("outcome", string(result.Outcome)),
	)

	if c.journal != nil {
		if err := c.journal.Record(c.runCtx, result); err != nil {
			c.logger.Error("failed to record scan", slog.Any("error", err))
		}
	}

	c.presentTimer = time.AfterFunc(c.cfg.PresentDuration, func() {
		c.post(event{kind: eventPresentDone, attempt: attempt})
	})
	c.publish()
}

func (c *Controller) onPresentDone(attempt uint64) {
	if c.state != domain.StatePresenting || attempt != c.attempt {
		return
	}
	c.presentTimer = nil
	c.current = nil
	c.state = domain.StateIdle
	c.publish()

	if c.cfg.AutoRestart {
		_ = c.startSource()
	}
}

func (c *Controller) snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Version:          c.version,
		State:            c.state,
		SourceRunning:    c.sourceRunning,
		SourceError:      c.sourceErr,
		LastScannedToken: c.lastScanned,
		AdmittedCount:    c.admitted,
		CachedTokens:     c.cache.Tokens().Len(),
		CacheUpdatedAt:   c.cache.UpdatedAt(),
	}
	if c.current != nil {
		current := *c.current
		snap.Current = &current
	}
	if c.history != nil {
		snap.History = c.history.Entries()
	}
	return snap
}

func (c *Controller) publish() {
	c.version++
	snap := c.snapshot()

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Full: drop the oldest pending snapshot to make room for the newest.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Controller) seedAdmitted(ctx context.Context) {
	if c.journal == nil {
		return
	}
	count, err := c.journal.CountAdmitted(ctx)
	if err != nil {
		c.logger.Warn("failed to read admitted count from journal", slog.Any("error", err))
		return
	}
	c.admitted = count
}

func (c *Controller) shutdown() {
	c.once.Do(func() {
		c.subMu.Lock()
		close(c.done)
		for id, ch := range c.subscribers {
			delete(c.subscribers, id)
			close(ch)
		}
		c.subMu.Unlock()

		c.stopSource()
		if c.presentTimer != nil {
			c.presentTimer.Stop()
		}
		c.verifyWG.Wait()
		c.logger.Info("scan controller stopped")
	})
}

func newScanID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
