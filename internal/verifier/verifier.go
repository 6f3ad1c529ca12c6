package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"eventverteiler/internal/evidence"
	"eventverteiler/internal/metrics"
	"eventverteiler/internal/model"
	"eventverteiler/internal/platform"
)

var (
	ErrNoLogIDs = errors.New("no log ids given")
	ErrNoLogs   = errors.New("no publication logs found for event")
)

type LogStore interface {
	GetLogByID(ctx context.Context, logID string) (*model.PublicationLog, error)
	GetLogsByEventID(ctx context.Context, eventID string) ([]model.PublicationLog, error)
	GetLatestLogsPerTarget(ctx context.Context, eventID string) ([]model.PublicationLog, error)
	UpdateLogVerification(ctx context.Context, logID string, status model.PublicationStatus, verifyError string) error
}

type AdapterSource interface {
	Adapter(p model.Platform, m model.Method) (platform.Adapter, bool)
}

type LogResult struct {
	LogID    string                  `json:"log_id"`
	Platform model.Platform          `json:"platform,omitempty"`
	Method   model.Method            `json:"method,omitempty"`
	Success  bool                    `json:"success"`
	Verified bool                    `json:"verified"`
	Status   model.PublicationStatus `json:"status,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Verified   int `json:"verified"`
}

type Report struct {
	Results []LogResult `json:"results"`
	Summary Summary     `json:"summary"`
}

// Verifier re-checks previously published events. API-method logs go back
// to the platform with whatever credentials are active now; automation logs
// are judged by their stored screenshot evidence, since no authenticated
// browser session may exist at verify time.
type Verifier struct {
	logs     LogStore
	registry AdapterSource
	evidence evidence.Store
	metrics  *metrics.Metrics
	log      *zerolog.Logger
}

func New(logs LogStore, registry AdapterSource, ev evidence.Store, log *zerolog.Logger, m *metrics.Metrics) *Verifier {
	return &Verifier{
		logs:     logs,
		registry: registry,
		evidence: ev,
		metrics:  m,
		log:      log,
	}
}

// VerifyLogs re-verifies the named logs. Failures are isolated per log,
// mirroring the publish path's per-target isolation.
func (v *Verifier) VerifyLogs(ctx context.Context, logIDs []string) (*Report, error) {
	if len(logIDs) == 0 {
		return nil, ErrNoLogIDs
	}

	report := &Report{}
	for _, logID := range logIDs {
		entry, err := v.logs.GetLogByID(ctx, logID)
		if err != nil {
			report.add(LogResult{LogID: logID, Error: err.Error()})
			continue
		}
		report.add(v.verifyOne(ctx, entry))
	}
	return report, nil
}

// VerifyEvent re-verifies every log recorded for the event.
func (v *Verifier) VerifyEvent(ctx context.Context, eventID string) (*Report, error) {
	logs, err := v.logs.GetLogsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs for event %s: %w", eventID, err)
	}
	if len(logs) == 0 {
		return nil, ErrNoLogs
	}

	report := &Report{}
	for i := range logs {
		report.add(v.verifyOne(ctx, &logs[i]))
	}
	return report, nil
}

func (v *Verifier) verifyOne(ctx context.Context, entry *model.PublicationLog) LogResult {
	result := LogResult{
		LogID:    entry.ID,
		Platform: entry.Platform,
		Method:   entry.Method,
		Status:   entry.Status,
	}

	// Only attempts that reached success (or were verified before) have
	// anything on the platform to re-check.
	switch entry.Status {
	case model.StatusSuccess, model.StatusVerified:
	case model.StatusPending:
		result.Error = "publish attempt still pending"
		return result
	default:
		result.Error = "publish attempt failed, nothing to verify"
		return result
	}

	if entry.PlatformEventID == "" {
		result.Error = "no platform event ID recorded"
		return result
	}

	var check platform.Verification
	var err error
	if entry.Method == model.MethodAutomation {
		check = v.inspectEvidence(ctx, entry)
	} else {
		adapter, ok := v.registry.Adapter(entry.Platform, entry.Method)
		if !ok {
			result.Error = msgNotConfigured(entry.Platform, entry.Method)
			return result
		}
		start := time.Now()
		check, err = adapter.VerifyEvent(ctx, entry.PlatformEventID)
		v.metrics.ObserveAdapterCall(entry.Platform, entry.Method, "verify", time.Since(start).Seconds())
		if err != nil {
			check = platform.Verification{Verified: false, Error: err.Error()}
		}
	}

	status := model.StatusVerified
	verifyErr := ""
	if !check.Verified {
		status = model.StatusFailed
		verifyErr = check.Error
		if verifyErr == "" {
			verifyErr = "publication no longer visible on platform"
		}
	}

	if uerr := v.logs.UpdateLogVerification(ctx, entry.ID, status, verifyErr); uerr != nil {
		v.log.Error().Err(uerr).Str("log_id", entry.ID).Msg("failed to persist verification outcome")
		result.Error = fmt.Sprintf("verification outcome could not be recorded: %v", uerr)
		return result
	}

	result.Success = true
	result.Verified = check.Verified
	result.Status = status
	result.Error = verifyErr
	outcome := "verified"
	if !check.Verified {
		outcome = "failed"
	}
	v.metrics.ObserveVerification(entry.Platform, entry.Method, outcome)
	return result
}

// inspectEvidence is the automation-method verification: the screenshot
// captured at publish time must still exist in the evidence store.
func (v *Verifier) inspectEvidence(ctx context.Context, entry *model.PublicationLog) platform.Verification {
	if entry.ScreenshotRef == "" {
		return platform.Verification{Verified: false, Error: "no screenshot available for verification"}
	}
	exists, err := v.evidence.Exists(ctx, entry.ScreenshotRef)
	if err != nil {
		return platform.Verification{Verified: false, Error: fmt.Sprintf("screenshot verification failed: %v", err)}
	}
	if !exists {
		return platform.Verification{Verified: false, Error: "screenshot evidence missing"}
	}
	return platform.Verification{
		Verified: true,
		Data: map[string]any{
			"screenshot_ref": entry.ScreenshotRef,
			"screenshot_url": v.evidence.URL(entry.ScreenshotRef),
		},
	}
}

func (r *Report) add(lr LogResult) {
	r.Results = append(r.Results, lr)
	r.Summary.Total++
	if lr.Success {
		r.Summary.Successful++
		if lr.Verified {
			r.Summary.Verified++
		}
	} else {
		r.Summary.Failed++
	}
}

func msgNotConfigured(p model.Platform, m model.Method) string {
	return fmt.Sprintf("platform %s with method %s not configured", p, m)
}
