package verifier

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"eventverteiler/internal/evidence"
	"eventverteiler/internal/model"
	"eventverteiler/internal/platform"
)

var errLogNotFound = errors.New("publication log not found")

type fakeLogStore struct {
	logs      map[string]*model.PublicationLog
	byEvent   map[string][]string
	updateErr error
}

func newFakeLogStore(entries ...*model.PublicationLog) *fakeLogStore {
	f := &fakeLogStore{
		logs:    make(map[string]*model.PublicationLog),
		byEvent: make(map[string][]string),
	}
	for _, e := range entries {
		f.logs[e.ID] = e
		f.byEvent[e.EventID] = append(f.byEvent[e.EventID], e.ID)
	}
	return f
}

func (f *fakeLogStore) GetLogByID(_ context.Context, logID string) (*model.PublicationLog, error) {
	l, ok := f.logs[logID]
	if !ok {
		return nil, errLogNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLogStore) GetLogsByEventID(_ context.Context, eventID string) ([]model.PublicationLog, error) {
	var out []model.PublicationLog
	for _, id := range f.byEvent[eventID] {
		out = append(out, *f.logs[id])
	}
	return out, nil
}

func (f *fakeLogStore) GetLatestLogsPerTarget(ctx context.Context, eventID string) ([]model.PublicationLog, error) {
	seen := make(map[string]bool)
	var out []model.PublicationLog
	logs, _ := f.GetLogsByEventID(ctx, eventID)
	for i := len(logs) - 1; i >= 0; i-- {
		key := string(logs[i].Platform) + "/" + string(logs[i].Method)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, logs[i])
	}
	return out, nil
}

func (f *fakeLogStore) UpdateLogVerification(_ context.Context, logID string, status model.PublicationStatus, verifyError string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	l, ok := f.logs[logID]
	if !ok {
		return errLogNotFound
	}
	l.Status = status
	l.VerifyError = verifyError
	return nil
}

type fakeRegistry struct {
	adapters map[model.Platform]platform.Adapter
}

func (f *fakeRegistry) Adapter(p model.Platform, _ model.Method) (platform.Adapter, bool) {
	a, ok := f.adapters[p]
	return a, ok
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestVerifier(logs LogStore, reg AdapterSource, ev evidence.Store) *Verifier {
	return New(logs, reg, ev, testLogger(), nil)
}

func apiRegistry(behavior platform.StubBehavior) *fakeRegistry {
	return &fakeRegistry{adapters: map[model.Platform]platform.Adapter{
		model.PlatformMeetup: platform.NewAPIAdapter(model.PlatformMeetup, platform.APICredentials{APIKey: "k"}, behavior),
	}}
}

func successLog(id string) *model.PublicationLog {
	return &model.PublicationLog{
		ID:              id,
		EventID:         "ev-1",
		Platform:        model.PlatformMeetup,
		Method:          model.MethodAPI,
		Status:          model.StatusSuccess,
		PlatformEventID: "meetup_123",
	}
}

func TestVerifyLogsValidation(t *testing.T) {
	v := newTestVerifier(newFakeLogStore(), &fakeRegistry{}, evidence.NewMemory())
	if _, err := v.VerifyLogs(context.Background(), nil); !errors.Is(err, ErrNoLogIDs) {
		t.Errorf("err = %v, want ErrNoLogIDs", err)
	}
}

func TestVerifyMarksVerified(t *testing.T) {
	store := newFakeLogStore(successLog("log-1"))
	v := newTestVerifier(store, apiRegistry(platform.StubBehavior{}), evidence.NewMemory())

	report, err := v.VerifyLogs(context.Background(), []string{"log-1"})
	if err != nil {
		t.Fatalf("VerifyLogs: %v", err)
	}
	if report.Summary != (Summary{Total: 1, Successful: 1, Verified: 1}) {
		t.Errorf("summary = %+v", report.Summary)
	}
	if store.logs["log-1"].Status != model.StatusVerified {
		t.Errorf("status = %s, want verified", store.logs["log-1"].Status)
	}
}

func TestVerifyGoneEventKeepsCreateError(t *testing.T) {
	entry := successLog("log-1")
	entry.ErrorDetails = "" // clean create
	store := newFakeLogStore(entry)
	v := newTestVerifier(store, apiRegistry(platform.StubBehavior{RejectVerify: "event not found"}), evidence.NewMemory())

	report, err := v.VerifyLogs(context.Background(), []string{"log-1"})
	if err != nil {
		t.Fatalf("VerifyLogs: %v", err)
	}
	if report.Summary.Verified != 0 || report.Summary.Successful != 1 {
		t.Errorf("summary = %+v, want checked but unverified", report.Summary)
	}

	got := store.logs["log-1"]
	if got.Status != model.StatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if got.VerifyError != "event not found" {
		t.Errorf("verify error = %q", got.VerifyError)
	}
	if got.ErrorDetails != "" {
		t.Errorf("create-phase error column was touched: %q", got.ErrorDetails)
	}
}

func TestVerifySkipsNonSuccessStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  model.PublicationStatus
		wantMsg string
	}{
		{"pending attempt", model.StatusPending, "publish attempt still pending"},
		{"failed attempt", model.StatusFailed, "publish attempt failed, nothing to verify"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := successLog("log-1")
			entry.Status = tt.status
			store := newFakeLogStore(entry)
			v := newTestVerifier(store, apiRegistry(platform.StubBehavior{}), evidence.NewMemory())

			report, err := v.VerifyLogs(context.Background(), []string{"log-1"})
			if err != nil {
				t.Fatalf("VerifyLogs: %v", err)
			}
			r := report.Results[0]
			if r.Success || r.Error != tt.wantMsg {
				t.Errorf("result = %+v, want skipped with %q", r, tt.wantMsg)
			}
			if store.logs["log-1"].Status != tt.status {
				t.Errorf("status changed to %s, must stay %s", store.logs["log-1"].Status, tt.status)
			}
		})
	}
}

func TestVerifyMissingPlatformEventID(t *testing.T) {
	entry := successLog("log-1")
	entry.PlatformEventID = ""
	store := newFakeLogStore(entry)
	v := newTestVerifier(store, apiRegistry(platform.StubBehavior{}), evidence.NewMemory())

	report, err := v.VerifyLogs(context.Background(), []string{"log-1"})
	if err != nil {
		t.Fatalf("VerifyLogs: %v", err)
	}
	r := report.Results[0]
	if r.Success || r.Error != "no platform event ID recorded" {
		t.Errorf("result = %+v", r)
	}
	if store.logs["log-1"].Status != model.StatusSuccess {
		t.Error("log without platform event id must stay untouched")
	}
}

func TestVerifyUnconfiguredPlatform(t *testing.T) {
	store := newFakeLogStore(successLog("log-1"))
	v := newTestVerifier(store, &fakeRegistry{}, evidence.NewMemory())

	report, err := v.VerifyLogs(context.Background(), []string{"log-1"})
	if err != nil {
		t.Fatalf("VerifyLogs: %v", err)
	}
	r := report.Results[0]
	if r.Success || r.Error == "" {
		t.Errorf("result = %+v, want reported error", r)
	}
	if store.logs["log-1"].Status != model.StatusSuccess {
		t.Error("log must stay untouched when no adapter is configured")
	}
}

func TestVerifyBatchIsolation(t *testing.T) {
	store := newFakeLogStore(successLog("log-1"))
	v := newTestVerifier(store, apiRegistry(platform.StubBehavior{}), evidence.NewMemory())

	report, err := v.VerifyLogs(context.Background(), []string{"log-missing", "log-1"})
	if err != nil {
		t.Fatalf("VerifyLogs: %v", err)
	}
	if report.Summary != (Summary{Total: 2, Successful: 1, Failed: 1, Verified: 1}) {
		t.Errorf("summary = %+v", report.Summary)
	}
	if report.Results[0].Error != errLogNotFound.Error() {
		t.Errorf("missing log error = %q", report.Results[0].Error)
	}
}

func TestVerifyIdempotent(t *testing.T) {
	store := newFakeLogStore(successLog("log-1"))
	v := newTestVerifier(store, apiRegistry(platform.StubBehavior{}), evidence.NewMemory())

	for i := 0; i < 2; i++ {
		if _, err := v.VerifyLogs(context.Background(), []string{"log-1"}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if store.logs["log-1"].Status != model.StatusVerified {
			t.Fatalf("run %d: status = %s", i, store.logs["log-1"].Status)
		}
	}
}

func TestVerifyAutomationUsesEvidence(t *testing.T) {
	ev := evidence.NewMemory()
	ref, err := ev.Put(context.Background(), "screenshots/spontacts_ev-1_1.png", []byte("png"), "image/png")
	if err != nil {
		t.Fatal(err)
	}

	entry := &model.PublicationLog{
		ID:              "log-1",
		EventID:         "ev-1",
		Platform:        model.PlatformSpontacts,
		Method:          model.MethodAutomation,
		Status:          model.StatusSuccess,
		PlatformEventID: "spontacts_123",
		ScreenshotRef:   ref,
	}
	store := newFakeLogStore(entry)
	// No adapter registered on purpose: automation verification must not need one.
	v := newTestVerifier(store, &fakeRegistry{}, ev)

	report, err := v.VerifyLogs(context.Background(), []string{"log-1"})
	if err != nil {
		t.Fatalf("VerifyLogs: %v", err)
	}
	if !report.Results[0].Verified {
		t.Errorf("result = %+v, want verified by screenshot", report.Results[0])
	}

	ev.Drop(ref)
	entry.Status = model.StatusVerified
	report, err = v.VerifyLogs(context.Background(), []string{"log-1"})
	if err != nil {
		t.Fatalf("VerifyLogs after drop: %v", err)
	}
	r := report.Results[0]
	if r.Verified {
		t.Error("verification must fail once the screenshot is gone")
	}
	if store.logs["log-1"].VerifyError != "screenshot evidence missing" {
		t.Errorf("verify error = %q", store.logs["log-1"].VerifyError)
	}
}

func TestVerifyAutomationWithoutScreenshot(t *testing.T) {
	entry := successLog("log-1")
	entry.Method = model.MethodAutomation
	entry.ScreenshotRef = ""
	store := newFakeLogStore(entry)
	v := newTestVerifier(store, &fakeRegistry{}, evidence.NewMemory())

	report, err := v.VerifyLogs(context.Background(), []string{"log-1"})
	if err != nil {
		t.Fatalf("VerifyLogs: %v", err)
	}
	if report.Results[0].Verified {
		t.Error("no screenshot means nothing to verify against")
	}
	if store.logs["log-1"].Status != model.StatusFailed {
		t.Errorf("status = %s, want failed", store.logs["log-1"].Status)
	}
}

func TestVerifyEvent(t *testing.T) {
	store := newFakeLogStore(
		successLog("log-1"),
		&model.PublicationLog{
			ID: "log-2", EventID: "ev-1",
			Platform: model.PlatformFacebook, Method: model.MethodAPI,
			Status: model.StatusFailed, ErrorDetails: "rejected",
		},
	)
	v := newTestVerifier(store, apiRegistry(platform.StubBehavior{}), evidence.NewMemory())

	report, err := v.VerifyEvent(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("VerifyEvent: %v", err)
	}
	if report.Summary != (Summary{Total: 2, Successful: 1, Failed: 1, Verified: 1}) {
		t.Errorf("summary = %+v", report.Summary)
	}

	if _, err := v.VerifyEvent(context.Background(), "ev-unknown"); !errors.Is(err, ErrNoLogs) {
		t.Errorf("err = %v, want ErrNoLogs", err)
	}
}

func TestStatus(t *testing.T) {
	store := newFakeLogStore(
		&model.PublicationLog{
			ID: "log-1", EventID: "ev-1",
			Platform: model.PlatformMeetup, Method: model.MethodAPI,
			Status: model.StatusFailed, ErrorDetails: "first try failed",
		},
		&model.PublicationLog{
			ID: "log-2", EventID: "ev-1",
			Platform: model.PlatformMeetup, Method: model.MethodAPI,
			Status: model.StatusVerified, PlatformEventID: "meetup_2",
		},
		&model.PublicationLog{
			ID: "log-3", EventID: "ev-1",
			Platform: model.PlatformSpontacts, Method: model.MethodAutomation,
			Status: model.StatusPending,
		},
	)
	v := newTestVerifier(store, &fakeRegistry{}, evidence.NewMemory())

	report, err := v.Status(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if report.Counts != (StatusCounts{Total: 3, Pending: 1, Failed: 1, Verified: 1}) {
		t.Errorf("counts = %+v", report.Counts)
	}

	meetup := report.Platforms[model.PlatformMeetup][model.MethodAPI]
	if meetup.LogID != "log-2" || meetup.Status != model.StatusVerified {
		t.Errorf("meetup latest = %+v, want the newer verified attempt", meetup)
	}
	if meetup.HasError {
		t.Error("latest meetup attempt carries no error")
	}
	spontacts := report.Platforms[model.PlatformSpontacts][model.MethodAutomation]
	if spontacts.Status != model.StatusPending {
		t.Errorf("spontacts latest = %+v", spontacts)
	}
}
