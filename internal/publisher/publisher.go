package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"eventverteiler/internal/dto"
	"eventverteiler/internal/metrics"
	"eventverteiler/internal/model"
	"eventverteiler/internal/platform"
)

var (
	ErrNoPlatforms   = errors.New("no target platforms given")
	ErrInvalidTarget = errors.New("unknown platform or method")
)

const msgNotConfigured = "platform not configured"

// EventStore resolves the event to publish. Publishing never mutates events.
type EventStore interface {
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
}

// LogStore persists one row per publish attempt.
type LogStore interface {
	AppendLog(ctx context.Context, l *model.PublicationLog) (string, error)
	UpdateLogResult(ctx context.Context, logID string, status model.PublicationStatus, platformEventID, errorDetails, screenshotRef string) error
}

// AdapterSource is the registry lookup the orchestrator needs.
type AdapterSource interface {
	Adapter(p model.Platform, m model.Method) (platform.Adapter, bool)
}

// Queue carries the delayed auto-verification messages. May be nil when
// async verification is disabled.
type Queue interface {
	Publish(message []byte, delaySeconds int) error
}

type TargetResult struct {
	Platform        model.Platform          `json:"platform"`
	Method          model.Method            `json:"method"`
	Status          model.PublicationStatus `json:"status"`
	LogID           string                  `json:"log_id,omitempty"`
	PlatformEventID string                  `json:"platform_event_id,omitempty"`
	ScreenshotRef   string                  `json:"screenshot_ref,omitempty"`
	Error           string                  `json:"error,omitempty"`
}

type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Pending    int `json:"pending"`
}

type Report struct {
	EventID string         `json:"event_id"`
	Results []TargetResult `json:"results"`
	Summary Summary        `json:"summary"`
}

// Publisher fans one event out to a set of platform targets through a single
// integration method, recording one publication log per attempted target.
type Publisher struct {
	events      EventStore
	logs        LogStore
	registry    AdapterSource
	queue       Queue
	metrics     *metrics.Metrics
	log         *zerolog.Logger
	verifyDelay time.Duration
}

type Option func(*Publisher)

// WithAutoVerify schedules a delayed verification message for every
// successful publish.
func WithAutoVerify(q Queue, delay time.Duration) Option {
	return func(p *Publisher) {
		p.queue = q
		p.verifyDelay = delay
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func New(events EventStore, logs LogStore, registry AdapterSource, log *zerolog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		events:   events,
		logs:     logs,
		registry: registry,
		log:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish dispatches the event to every requested platform. Duplicated
// platforms are processed twice on purpose: each request is its own attempt
// with its own log row. A single target's failure never aborts the batch.
func (p *Publisher) Publish(ctx context.Context, eventID string, platforms []model.Platform, method model.Method) (*Report, error) {
	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: method %q", ErrInvalidTarget, method)
	}
	for _, pl := range platforms {
		if !pl.Valid() {
			return nil, fmt.Errorf("%w: platform %q", ErrInvalidTarget, pl)
		}
	}

	event, err := p.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event %s: %w", eventID, err)
	}

	results := make([]TargetResult, len(platforms))
	var wg sync.WaitGroup
	for i, pl := range platforms {
		wg.Add(1)
		go func(i int, pl model.Platform) {
			defer wg.Done()
			results[i] = p.publishOne(ctx, event, pl, method)
		}(i, pl)
	}
	wg.Wait()

	report := &Report{EventID: eventID, Results: results}
	for _, r := range results {
		report.Summary.Total++
		switch r.Status {
		case model.StatusSuccess:
			report.Summary.Successful++
		case model.StatusPending:
			report.Summary.Pending++
		default:
			report.Summary.Failed++
		}
	}

	p.scheduleVerification(eventID, results)

	p.log.Info().
		Str("event_id", eventID).
		Str("method", string(method)).
		Int("total", report.Summary.Total).
		Int("successful", report.Summary.Successful).
		Int("failed", report.Summary.Failed).
		Msg("publish batch finished")

	return report, nil
}

func (p *Publisher) publishOne(ctx context.Context, event *model.Event, pl model.Platform, method model.Method) TargetResult {
	result := TargetResult{Platform: pl, Method: method}

	adapter, ok := p.registry.Adapter(pl, method)
	if !ok {
		// No credentials for this pair: synthetic failure, no log row to
		// attribute to a nonexistent adapter.
		result.Status = model.StatusFailed
		result.Error = msgNotConfigured
		p.metrics.ObservePublish(pl, method, model.StatusFailed)
		return result
	}

	entry := &model.PublicationLog{
		EventID:     event.ID,
		Platform:    pl,
		Method:      method,
		Status:      model.StatusPending,
		PublishedAt: time.Now(),
	}
	logID, err := p.logs.AppendLog(ctx, entry)
	if err != nil {
		result.Status = model.StatusFailed
		result.Error = fmt.Sprintf("failed to record publish attempt: %v", err)
		p.metrics.ObservePublish(pl, method, model.StatusFailed)
		return result
	}
	result.LogID = logID

	start := time.Now()
	created, err := adapter.CreateEvent(ctx, event)
	p.metrics.ObserveAdapterCall(pl, method, "create", time.Since(start).Seconds())

	switch {
	case err != nil:
		result.Status = model.StatusFailed
		result.Error = err.Error()
	case !created.Success:
		result.Status = model.StatusFailed
		result.Error = created.Error
	default:
		result.Status = model.StatusSuccess
		result.PlatformEventID = created.PlatformEventID
		result.ScreenshotRef = created.EvidenceRef
	}

	if uerr := p.logs.UpdateLogResult(ctx, logID, result.Status, result.PlatformEventID, result.Error, result.ScreenshotRef); uerr != nil {
		// The attempt may have gone through remotely, but its outcome is not
		// durably recorded; the caller must see that.
		p.log.Error().Err(uerr).Str("log_id", logID).Msg("failed to persist publish outcome")
		result.Status = model.StatusFailed
		result.Error = fmt.Sprintf("publish outcome could not be recorded: %v", uerr)
	}

	p.metrics.ObservePublish(pl, method, result.Status)
	return result
}

func (p *Publisher) scheduleVerification(eventID string, results []TargetResult) {
	if p.queue == nil {
		return
	}
	var logIDs []string
	for _, r := range results {
		if r.Status == model.StatusSuccess && r.LogID != "" {
			logIDs = append(logIDs, r.LogID)
		}
	}
	if len(logIDs) == 0 {
		return
	}

	msg := dto.VerificationDueMessage{
		EventID: eventID,
		LogIDs:  logIDs,
		DueAt:   time.Now().Add(p.verifyDelay),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to marshal verification message")
		return
	}
	if err := p.queue.Publish(payload, int(p.verifyDelay.Seconds())); err != nil {
		p.log.Error().Err(err).Str("event_id", eventID).Msg("failed to schedule verification")
	}
}
