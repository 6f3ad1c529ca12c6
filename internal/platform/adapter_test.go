package platform

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"eventverteiler/internal/evidence"
	"eventverteiler/internal/model"
)

func TestAPIAdapterCreate(t *testing.T) {
	event := &model.Event{ID: "ev-1", Title: "Tech Meetup"}

	tests := []struct {
		name        string
		behavior    StubBehavior
		wantSuccess bool
		wantErr     error
		wantMsg     string
	}{
		{"default succeeds", StubBehavior{}, true, nil, ""},
		{"platform rejection", StubBehavior{RejectCreate: "title too long"}, false, nil, "title too long"},
		{"transport fault", StubBehavior{TransportErr: errors.New("connection refused")}, false, errors.New("connection refused"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAPIAdapter(model.PlatformMeetup, APICredentials{APIKey: "k"}, tt.behavior)
			res, err := a.CreateEvent(context.Background(), event)
			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if res.Success != tt.wantSuccess {
				t.Errorf("success = %v, want %v", res.Success, tt.wantSuccess)
			}
			if res.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", res.Error, tt.wantMsg)
			}
			if res.Success && !strings.HasPrefix(res.PlatformEventID, "meetup_") {
				t.Errorf("platform event id = %q, want meetup_ prefix", res.PlatformEventID)
			}
		})
	}
}

func TestAPIAdapterVerify(t *testing.T) {
	a := NewAPIAdapter(model.PlatformEventbrite, APICredentials{APIKey: "k"}, StubBehavior{})

	check, err := a.VerifyEvent(context.Background(), "eventbrite_123")
	if err != nil {
		t.Fatalf("VerifyEvent: %v", err)
	}
	if !check.Verified || check.Data["event_id"] != "eventbrite_123" {
		t.Errorf("check = %+v, want verified with echoed id", check)
	}

	check, err = a.VerifyEvent(context.Background(), "")
	if err != nil {
		t.Fatalf("VerifyEvent empty id: %v", err)
	}
	if check.Verified || check.Error == "" {
		t.Errorf("empty id must report unverified with a reason, got %+v", check)
	}

	gone := NewAPIAdapter(model.PlatformEventbrite, APICredentials{APIKey: "k"}, StubBehavior{RejectVerify: "event not found"})
	check, err = gone.VerifyEvent(context.Background(), "eventbrite_123")
	if err != nil {
		t.Fatalf("VerifyEvent rejected: %v", err)
	}
	if check.Verified || check.Error != "event not found" {
		t.Errorf("check = %+v, want rejection passed through", check)
	}
}

func TestAutomationAdapterCreateStoresScreenshot(t *testing.T) {
	ev := evidence.NewMemory()
	a := NewAutomationAdapter(model.PlatformSpontacts, AutomationCredentials{Username: "bot"}, ev, StubBehavior{})

	res, err := a.CreateEvent(context.Background(), &model.Event{ID: "ev-1", Title: "Wanderung"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.EvidenceRef == "" {
		t.Fatal("automation publish must produce an evidence ref")
	}
	exists, err := ev.Exists(context.Background(), res.EvidenceRef)
	if err != nil || !exists {
		t.Errorf("screenshot %q not in store (exists=%v, err=%v)", res.EvidenceRef, exists, err)
	}
}

func TestAutomationAdapterSessionRoundTrip(t *testing.T) {
	a := NewAutomationAdapter(model.PlatformFacebook, AutomationCredentials{Username: "bot"}, evidence.NewMemory(), StubBehavior{})

	saved, err := a.SaveSession(context.Background())
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if !saved.Success || saved.Blob == "" {
		t.Fatalf("saved = %+v", saved)
	}

	raw, err := base64.StdEncoding.DecodeString(saved.Blob)
	if err != nil {
		t.Fatalf("blob is not base64: %v", err)
	}
	var state struct {
		Platform string `json:"platform"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatalf("blob is not json: %v", err)
	}
	if state.Platform != "facebook" || state.Username != "bot" {
		t.Errorf("state = %+v", state)
	}

	restored, err := a.RestoreSession(context.Background(), saved.Blob)
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if !restored.Success {
		t.Errorf("restored = %+v", restored)
	}
}

func TestAutomationAdapterRestoreSessionRejects(t *testing.T) {
	fb := NewAutomationAdapter(model.PlatformFacebook, AutomationCredentials{Username: "bot"}, evidence.NewMemory(), StubBehavior{})
	sp := NewAutomationAdapter(model.PlatformSpontacts, AutomationCredentials{Username: "bot"}, evidence.NewMemory(), StubBehavior{})

	saved, err := fb.SaveSession(context.Background())
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	tests := []struct {
		name string
		blob string
	}{
		{"empty blob", ""},
		{"garbage blob", "not-base64!!"},
		{"wrong platform", saved.Blob},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := sp.RestoreSession(context.Background(), tt.blob)
			if err != nil {
				t.Fatalf("RestoreSession: %v", err)
			}
			if res.Success || res.Error == "" {
				t.Errorf("res = %+v, want rejection with reason", res)
			}
		})
	}
}
