package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"

	"eventverteiler/internal/model"
)

// apiAdapter publishes through a platform's official API. The remote side
// is simulated: payload mapping is real, the network call is a stub driven
// by StubBehavior.
type apiAdapter struct {
	platform model.Platform
	creds    APICredentials
	behavior StubBehavior
	now      func() time.Time
	log      zerolog.Logger
}

func NewAPIAdapter(p model.Platform, creds APICredentials, behavior StubBehavior) Adapter {
	return &apiAdapter{
		platform: p,
		creds:    creds,
		behavior: behavior,
		now:      time.Now,
		log:      zlog.Logger.With().Str("platform", string(p)).Str("method", string(model.MethodAPI)).Logger(),
	}
}

func (a *apiAdapter) Platform() model.Platform { return a.platform }
func (a *apiAdapter) Method() model.Method     { return model.MethodAPI }

func (a *apiAdapter) CreateEvent(ctx context.Context, event *model.Event) (Result, error) {
	if a.behavior.TransportErr != nil {
		return Result{}, a.behavior.TransportErr
	}
	if err := a.behavior.wait(ctx); err != nil {
		return Result{}, err
	}

	payload := buildPayload(a.platform, event)
	a.log.Debug().Int("payload_fields", len(payload)).Str("title", event.Title).Msg("sending create request")

	if a.behavior.RejectCreate != "" {
		return Result{Success: false, Error: a.behavior.RejectCreate}, nil
	}

	return Result{
		Success:         true,
		PlatformEventID: fmt.Sprintf("%s_%d", a.platform, a.now().UnixMilli()),
	}, nil
}

func (a *apiAdapter) VerifyEvent(ctx context.Context, platformEventID string) (Verification, error) {
	if a.behavior.TransportErr != nil {
		return Verification{}, a.behavior.TransportErr
	}
	if err := a.behavior.wait(ctx); err != nil {
		return Verification{}, err
	}
	if platformEventID == "" {
		return Verification{Verified: false, Error: "no platform event ID"}, nil
	}
	if a.behavior.RejectVerify != "" {
		return Verification{Verified: false, Error: a.behavior.RejectVerify}, nil
	}
	return Verification{
		Verified: true,
		Data: map[string]any{
			"event_id":    platformEventID,
			"status":      "published",
			"verified_at": a.now().UTC().Format(time.RFC3339),
		},
	}, nil
}

func (a *apiAdapter) UpdateEvent(ctx context.Context, platformEventID string, event *model.Event) (Result, error) {
	if a.behavior.TransportErr != nil {
		return Result{}, a.behavior.TransportErr
	}
	if err := a.behavior.wait(ctx); err != nil {
		return Result{}, err
	}
	if platformEventID == "" {
		return Result{Success: false, Error: "no platform event ID"}, nil
	}
	buildPayload(a.platform, event)
	return Result{Success: true, PlatformEventID: platformEventID}, nil
}

func (a *apiAdapter) DeleteEvent(ctx context.Context, platformEventID string) (Result, error) {
	if a.behavior.TransportErr != nil {
		return Result{}, a.behavior.TransportErr
	}
	if err := a.behavior.wait(ctx); err != nil {
		return Result{}, err
	}
	if platformEventID == "" {
		return Result{Success: false, Error: "no platform event ID"}, nil
	}
	return Result{Success: true, PlatformEventID: platformEventID}, nil
}
