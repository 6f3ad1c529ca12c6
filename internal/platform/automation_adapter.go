package platform

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"

	"eventverteiler/internal/evidence"
	"eventverteiler/internal/model"
)

// automationAdapter publishes by driving the platform's web UI. The browser
// run is simulated, but each create still produces a screenshot artifact in
// the evidence store so the verification path has something real to inspect.
type automationAdapter struct {
	platform model.Platform
	creds    AutomationCredentials
	behavior StubBehavior
	evidence evidence.Store
	session  string
	now      func() time.Time
	log      zerolog.Logger
}

func NewAutomationAdapter(p model.Platform, creds AutomationCredentials, ev evidence.Store, behavior StubBehavior) SessionAdapter {
	return &automationAdapter{
		platform: p,
		creds:    creds,
		behavior: behavior,
		evidence: ev,
		session:  creds.SessionBlob,
		now:      time.Now,
		log:      zlog.Logger.With().Str("platform", string(p)).Str("method", string(model.MethodAutomation)).Logger(),
	}
}

func (a *automationAdapter) Platform() model.Platform { return a.platform }
func (a *automationAdapter) Method() model.Method     { return model.MethodAutomation }

func (a *automationAdapter) CreateEvent(ctx context.Context, event *model.Event) (Result, error) {
	if a.behavior.TransportErr != nil {
		return Result{}, a.behavior.TransportErr
	}
	if err := a.behavior.wait(ctx); err != nil {
		return Result{}, err
	}

	payload := buildPayload(a.platform, event)
	a.log.Debug().Int("form_fields", len(payload)).Str("title", event.Title).Msg("filling publish form")

	if a.behavior.RejectCreate != "" {
		return Result{Success: false, Error: a.behavior.RejectCreate}, nil
	}

	key := fmt.Sprintf("screenshots/%s_%s_%d.png", a.platform, event.ID, a.now().UnixMilli())
	ref, err := a.evidence.Put(ctx, key, a.renderScreenshot(event), "image/png")
	if err != nil {
		return Result{}, fmt.Errorf("failed to store screenshot: %w", err)
	}

	return Result{
		Success:         true,
		PlatformEventID: fmt.Sprintf("%s_%d", a.platform, a.now().UnixMilli()),
		EvidenceRef:     ref,
	}, nil
}

func (a *automationAdapter) VerifyEvent(ctx context.Context, platformEventID string) (Verification, error) {
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
	// A live UI check would need an authenticated session; report what the
	// simulated browser last saw.
	return Verification{
		Verified: true,
		Data: map[string]any{
			"event_id": platformEventID,
			"status":   "visible",
		},
	}, nil
}

func (a *automationAdapter) UpdateEvent(ctx context.Context, platformEventID string, event *model.Event) (Result, error) {
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

func (a *automationAdapter) DeleteEvent(ctx context.Context, platformEventID string) (Result, error) {
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

type sessionState struct {
	Platform string    `json:"platform"`
	Username string    `json:"username"`
	SavedAt  time.Time `json:"saved_at"`
}

func (a *automationAdapter) SaveSession(ctx context.Context) (Session, error) {
	if a.behavior.TransportErr != nil {
		return Session{}, a.behavior.TransportErr
	}
	state := sessionState{
		Platform: string(a.platform),
		Username: a.creds.Username,
		SavedAt:  a.now(),
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return Session{}, fmt.Errorf("failed to marshal session state: %w", err)
	}
	blob := base64.StdEncoding.EncodeToString(raw)
	a.session = blob
	return Session{Success: true, Blob: blob}, nil
}

func (a *automationAdapter) RestoreSession(ctx context.Context, blob string) (Session, error) {
	if a.behavior.TransportErr != nil {
		return Session{}, a.behavior.TransportErr
	}
	if blob == "" {
		return Session{Success: false, Error: "empty session blob"}, nil
	}
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return Session{Success: false, Error: "malformed session blob"}, nil
	}
	var state sessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return Session{Success: false, Error: "malformed session blob"}, nil
	}
	if state.Platform != string(a.platform) {
		return Session{Success: false, Error: fmt.Sprintf("session belongs to %s", state.Platform)}, nil
	}
	a.session = blob
	return Session{Success: true, Blob: blob}, nil
}

// renderScreenshot fabricates the screenshot a headless browser run would
// capture. A real integration replaces this with page.Screenshot output.
func (a *automationAdapter) renderScreenshot(event *model.Event) []byte {
	return []byte(fmt.Sprintf("screenshot %s publish %q at %s", a.platform, event.Title, a.now().UTC().Format(time.RFC3339)))
}
