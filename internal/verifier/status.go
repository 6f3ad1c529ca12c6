package verifier

import (
	"context"
	"fmt"
	"time"

	"eventverteiler/internal/model"
)

type TargetStatus struct {
	Status          model.PublicationStatus `json:"status"`
	LogID           string                  `json:"log_id"`
	PlatformEventID string                  `json:"platform_event_id,omitempty"`
	PublishedAt     time.Time               `json:"published_at"`
	HasError        bool                    `json:"has_error"`
}

type StatusCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Success  int `json:"success"`
	Failed   int `json:"failed"`
	Verified int `json:"verified"`
}

// StatusReport is the dashboard view: counts over the full history plus the
// most recent attempt per (platform, method).
type StatusReport struct {
	EventID   string                                           `json:"event_id"`
	Counts    StatusCounts                                     `json:"counts"`
	Platforms map[model.Platform]map[model.Method]TargetStatus `json:"platforms"`
	Logs      []model.PublicationLog                           `json:"logs"`
}

func (v *Verifier) Status(ctx context.Context, eventID string) (*StatusReport, error) {
	logs, err := v.logs.GetLogsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs for event %s: %w", eventID, err)
	}

	report := &StatusReport{
		EventID:   eventID,
		Platforms: make(map[model.Platform]map[model.Method]TargetStatus),
		Logs:      logs,
	}
	for _, l := range logs {
		report.Counts.Total++
		switch l.Status {
		case model.StatusPending:
			report.Counts.Pending++
		case model.StatusSuccess:
			report.Counts.Success++
		case model.StatusFailed:
			report.Counts.Failed++
		case model.StatusVerified:
			report.Counts.Verified++
		}
	}

	latest, err := v.logs.GetLatestLogsPerTarget(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest logs for event %s: %w", eventID, err)
	}
	for _, l := range latest {
		byMethod, ok := report.Platforms[l.Platform]
		if !ok {
			byMethod = make(map[model.Method]TargetStatus)
			report.Platforms[l.Platform] = byMethod
		}
		byMethod[l.Method] = TargetStatus{
			Status:          l.Status,
			LogID:           l.ID,
			PlatformEventID: l.PlatformEventID,
			PublishedAt:     l.PublishedAt,
			HasError:        l.ErrorDetails != "" || l.VerifyError != "",
		}
	}

	return report, nil
}
