package platform

import (
	"context"
	"time"

	"eventverteiler/internal/model"
)

// Result is the outcome of a create/update/delete call against a platform.
// A platform-side rejection comes back as Success=false with Error set;
// the Go error return is reserved for transport faults.
type Result struct {
	Success         bool   `json:"success"`
	PlatformEventID string `json:"platform_event_id,omitempty"`
	Error           string `json:"error,omitempty"`
	EvidenceRef     string `json:"evidence_ref,omitempty"` // automation only
}

type Verification struct {
	Verified bool           `json:"verified"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type Session struct {
	Success bool   `json:"success"`
	Blob    string `json:"blob,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Adapter is the uniform capability set every platform/method variant
// implements. The orchestrators never care which of the eight variants they
// hold.
type Adapter interface {
	Platform() model.Platform
	Method() model.Method
	CreateEvent(ctx context.Context, event *model.Event) (Result, error)
	VerifyEvent(ctx context.Context, platformEventID string) (Verification, error)
	UpdateEvent(ctx context.Context, platformEventID string, event *model.Event) (Result, error)
	DeleteEvent(ctx context.Context, platformEventID string) (Result, error)
}

// SessionAdapter is implemented by automation adapters only: login state is
// persisted across runs so the browser does not re-authenticate per publish.
type SessionAdapter interface {
	Adapter
	SaveSession(ctx context.Context) (Session, error)
	RestoreSession(ctx context.Context, blob string) (Session, error)
}

// StubBehavior drives the simulated remote side of an adapter. The real
// platform integrations are out of scope, so every adapter is a test double
// with injectable latency and outcome.
type StubBehavior struct {
	Latency      time.Duration
	RejectCreate string // platform rejects the event with this message
	RejectVerify string // verification reports the event gone with this message
	TransportErr error  // every call fails at the transport level
}

func (b StubBehavior) wait(ctx context.Context) error {
	if b.Latency <= 0 {
		return nil
	}
	t := time.NewTimer(b.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type APICredentials struct {
	APIKey       string
	ClientID     string
	ClientSecret string
}

type AutomationCredentials struct {
	Username    string
	Password    string
	SessionBlob string
}

// PlatformCredentials may be partially populated: a platform can have API
// credentials, automation credentials, both, or neither.
type PlatformCredentials struct {
	API        *APICredentials
	Automation *AutomationCredentials
}

type Credentials map[model.Platform]PlatformCredentials

// CredentialsFromConfigs derives the registry input from stored platform
// configuration, honoring the per-method enabled flags.
func CredentialsFromConfigs(configs []model.PlatformConfig) Credentials {
	creds := make(Credentials, len(configs))
	for _, cfg := range configs {
		var pc PlatformCredentials
		if cfg.APIEnabled {
			pc.API = &APICredentials{
				APIKey:       cfg.APIKey,
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
			}
		}
		if cfg.AutomationEnabled {
			pc.Automation = &AutomationCredentials{
				Username:    cfg.Username,
				Password:    cfg.Password,
				SessionBlob: cfg.SessionBlob,
			}
		}
		if pc.API != nil || pc.Automation != nil {
			creds[cfg.Platform] = pc
		}
	}
	return creds
}
