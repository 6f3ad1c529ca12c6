package csvio

import (
	"reflect"
	"strings"
	"testing"

	"eventverteiler/internal/model"
)

func TestTemplateParses(t *testing.T) {
	result, err := Parse(Template())
	if err != nil {
		t.Fatalf("Parse(Template()): %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("template rows rejected: %v", result.Errors)
	}
	if len(result.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(result.Events))
	}
	e := result.Events[0]
	if e.Title != "Tech Meetup Berlin" || e.EventType != model.EventTypeLive {
		t.Errorf("event = %+v", e)
	}
	if !reflect.DeepEqual(e.Tags, []string{"tech", "berlin"}) {
		t.Errorf("tags = %v", e.Tags)
	}
}

func TestParseRowValidation(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantErr string
	}{
		{"missing title", `,desc,2026-09-15,19:00,,,,,,,,live`, "title is required"},
		{"bad date", `T,,15.09.2026,,,,,,,,,live`, "invalid date"},
		{"bad time", `T,,2026-09-15,7pm,,,,,,,,live`, "invalid time"},
		{"bad event type", `T,,2026-09-15,19:00,,,,,,,,webinar`, "invalid event_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Join(header, ",") + "\n" + tt.row + "\n"
			result, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(result.Events) != 0 {
				t.Errorf("invalid row produced events: %+v", result.Events)
			}
			if len(result.Errors) == 0 {
				t.Fatal("no row errors reported")
			}
			if result.Errors[0].Row != 2 {
				t.Errorf("row = %d, want 2", result.Errors[0].Row)
			}
			if !strings.Contains(result.Errors[0].Message, tt.wantErr) {
				t.Errorf("message = %q, want substring %q", result.Errors[0].Message, tt.wantErr)
			}
		})
	}
}

func TestParseMixedRows(t *testing.T) {
	data := strings.Join(header, ",") + "\n" +
		"Good Event,,2026-09-15,19:00,Berlin,,,,,tech;tech;berlin,,live\n" +
		",broken row,,,,,,,,,,live\n" +
		"Another Good One,,,,,,,,,,,\n"

	result, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(result.Events))
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 3 {
		t.Errorf("errors = %+v, want one error on row 3", result.Errors)
	}
	// duplicate tags collapse, order preserved
	if !reflect.DeepEqual(result.Events[0].Tags, []string{"tech", "berlin"}) {
		t.Errorf("tags = %v", result.Events[0].Tags)
	}
	// empty event_type defaults to live
	if result.Events[1].EventType != model.EventTypeLive {
		t.Errorf("event type = %s, want live default", result.Events[1].EventType)
	}
}

func TestParseRejectsBadHeader(t *testing.T) {
	if _, err := Parse("name,when\nFoo,2026-09-15\n"); err == nil {
		t.Error("header without title column must be rejected")
	}
	if _, err := Parse(""); err == nil {
		t.Error("empty data must be rejected")
	}
}

func TestExportRoundTrip(t *testing.T) {
	events := []model.Event{
		{
			Title:     "Sommerfest",
			Date:      "2026-07-01",
			Time:      "18:30",
			Location:  "München",
			Price:     "5 EUR",
			Tags:      []string{"sommer", "open air"},
			EventType: model.EventTypeHybrid,
		},
	}

	out, err := Export(events)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	result, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse(Export()): %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("round trip errors: %v", result.Errors)
	}
	got := result.Events[0]
	if got.Title != events[0].Title || got.Date != events[0].Date ||
		got.Time != events[0].Time || got.EventType != events[0].EventType {
		t.Errorf("round trip changed the event: %+v", got)
	}
	if !reflect.DeepEqual(got.Tags, events[0].Tags) {
		t.Errorf("tags = %v", got.Tags)
	}
}
