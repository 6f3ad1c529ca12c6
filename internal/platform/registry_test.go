package platform

import (
	"context"
	"testing"

	"eventverteiler/internal/evidence"
	"eventverteiler/internal/model"
)

func TestCredentialsFromConfigs(t *testing.T) {
	configs := []model.PlatformConfig{
		{
			Platform:   model.PlatformMeetup,
			APIEnabled: true,
			APIKey:     "mk",
		},
		{
			Platform:          model.PlatformFacebook,
			APIEnabled:        true,
			APIKey:            "fk",
			AutomationEnabled: true,
			Username:          "bot",
			Password:          "secret",
		},
		{
			// disabled methods contribute nothing even with creds present
			Platform: model.PlatformEventbrite,
			APIKey:   "unused",
		},
	}

	creds := CredentialsFromConfigs(configs)

	if len(creds) != 2 {
		t.Fatalf("got %d platforms, want 2", len(creds))
	}
	if creds[model.PlatformMeetup].API == nil || creds[model.PlatformMeetup].API.APIKey != "mk" {
		t.Error("meetup api credentials missing")
	}
	if creds[model.PlatformMeetup].Automation != nil {
		t.Error("meetup must not have automation credentials")
	}
	fb := creds[model.PlatformFacebook]
	if fb.API == nil || fb.Automation == nil || fb.Automation.Username != "bot" {
		t.Errorf("facebook credentials incomplete: %+v", fb)
	}
	if _, ok := creds[model.PlatformEventbrite]; ok {
		t.Error("eventbrite has no enabled method, must be absent")
	}
}

func TestRegistryLookupAndAvailable(t *testing.T) {
	creds := Credentials{
		model.PlatformSpontacts: {Automation: &AutomationCredentials{Username: "bot"}},
		model.PlatformMeetup:    {API: &APICredentials{APIKey: "mk"}},
	}
	r := NewRegistry(creds, evidence.NewMemory())

	if _, ok := r.Adapter(model.PlatformMeetup, model.MethodAPI); !ok {
		t.Error("meetup/api should be configured")
	}
	if _, ok := r.Adapter(model.PlatformMeetup, model.MethodAutomation); ok {
		t.Error("meetup/automation should be absent")
	}
	if _, ok := r.Adapter(model.PlatformEventbrite, model.MethodAPI); ok {
		t.Error("eventbrite should be absent entirely")
	}

	got := r.Available()
	want := []Target{
		{Platform: model.PlatformMeetup, Method: model.MethodAPI},
		{Platform: model.PlatformSpontacts, Method: model.MethodAutomation},
	}
	if len(got) != len(want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Available()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRegistryReconfigureReplaces(t *testing.T) {
	r := NewRegistry(Credentials{
		model.PlatformMeetup: {API: &APICredentials{APIKey: "old"}},
	}, evidence.NewMemory())

	r.Reconfigure(Credentials{
		model.PlatformFacebook: {API: &APICredentials{APIKey: "new"}},
	})

	if _, ok := r.Adapter(model.PlatformMeetup, model.MethodAPI); ok {
		t.Error("meetup must disappear after reconfigure")
	}
	if _, ok := r.Adapter(model.PlatformFacebook, model.MethodAPI); !ok {
		t.Error("facebook must appear after reconfigure")
	}
}

func TestRegistryBehaviorInjection(t *testing.T) {
	r := NewRegistry(Credentials{
		model.PlatformMeetup: {API: &APICredentials{APIKey: "mk"}},
	}, evidence.NewMemory(), WithBehavior(func(p model.Platform, m model.Method) StubBehavior {
		return StubBehavior{RejectCreate: "quota exceeded"}
	}))

	a, ok := r.Adapter(model.PlatformMeetup, model.MethodAPI)
	if !ok {
		t.Fatal("adapter missing")
	}
	res, err := a.CreateEvent(context.Background(), &model.Event{Title: "x"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if res.Success || res.Error != "quota exceeded" {
		t.Errorf("result = %+v, want injected rejection", res)
	}
}
