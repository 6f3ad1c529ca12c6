package platform

import (
	"strings"
	"testing"
	"time"

	"eventverteiler/internal/model"
)

func TestIsFreeEvent(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  bool
	}{
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"kostenlos", "Kostenlos", true},
		{"kostenlos inside sentence", "Eintritt kostenlos!", true},
		{"free uppercase", "FREE", true},
		{"free entry", "Free entry", true},
		{"paid euro amount", "15 EUR", false},
		{"paid formatted", "10,50 €", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFreeEvent(tt.price); got != tt.want {
				t.Errorf("isFreeEvent(%q) = %v, want %v", tt.price, got, tt.want)
			}
		})
	}
}

func TestEventInstant(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		clock   string
		wantOK  bool
		wantUTC string
	}{
		{"date and time", "2026-09-15", "19:00", true, "2026-09-15T17:00:00Z"},
		{"date only defaults to midnight", "2026-09-15", "", true, "2026-09-14T22:00:00Z"},
		{"no date", "", "19:00", false, ""},
		{"garbage date", "15.09.2026", "19:00", false, ""},
		{"garbage time", "2026-09-15", "7pm", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instant, ok := eventInstant(&model.Event{Date: tt.date, Time: tt.clock})
			if ok != tt.wantOK {
				t.Fatalf("eventInstant ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got := instant.UTC().Format(time.RFC3339); got != tt.wantUTC {
				t.Errorf("instant = %s, want %s", got, tt.wantUTC)
			}
		})
	}
}

func TestAugmentedDescription(t *testing.T) {
	event := &model.Event{
		Description: "Monthly community meetup.",
		Organizer:   "Community e.V.",
		Price:       "Kostenlos",
		URL:         "https://example.org/meetup",
		Tags:        []string{"tech", "berlin mitte"},
	}
	got := augmentedDescription(event)

	for _, want := range []string{
		"Monthly community meetup.",
		"Organizer: Community e.V.",
		"Price: Kostenlos",
		"More info: https://example.org/meetup",
		"#tech #berlinmitte",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("description missing %q:\n%s", want, got)
		}
	}

	bare := augmentedDescription(&model.Event{Description: "Just text"})
	if bare != "Just text" {
		t.Errorf("bare description = %q, want unchanged", bare)
	}
}

func TestBuildPayload(t *testing.T) {
	event := &model.Event{
		ID:        "ev-1",
		Title:     "Tech Meetup Berlin",
		Date:      "2026-09-15",
		Time:      "19:00",
		Location:  "Berlin",
		Category:  "technology",
		Price:     "Kostenlos",
		Tags:      []string{"tech", "berlin"},
		ImageURLs: []string{"https://example.org/cover.jpg"},
		EventType: model.EventTypeVirtual,
	}

	t.Run("meetup", func(t *testing.T) {
		p := buildPayload(model.PlatformMeetup, event)
		if p["name"] != event.Title {
			t.Errorf("name = %v", p["name"])
		}
		if p["topics"] != "tech, berlin" {
			t.Errorf("topics = %v, want comma-joined tags", p["topics"])
		}
		if _, ok := p["time"].(int64); !ok {
			t.Errorf("time = %T, want unix millis int64", p["time"])
		}
		if p["is_online_event"] != true {
			t.Error("virtual event should set is_online_event")
		}
	})

	t.Run("eventbrite", func(t *testing.T) {
		p := buildPayload(model.PlatformEventbrite, event)
		inner, ok := p["event"].(map[string]any)
		if !ok {
			t.Fatalf("event = %T, want nested object", p["event"])
		}
		name, ok := inner["name"].(map[string]any)
		if !ok || name["html"] != event.Title {
			t.Errorf("event.name = %v", inner["name"])
		}
		if inner["online_event"] != true {
			t.Error("virtual event should set online_event")
		}
		if p["is_free"] != true {
			t.Error("kostenlos price should map to is_free")
		}
		if _, ok := p["start"]; !ok {
			t.Error("scheduled event should carry start")
		}
	})

	t.Run("facebook", func(t *testing.T) {
		p := buildPayload(model.PlatformFacebook, event)
		if p["category"] != "TECHNOLOGY" {
			t.Errorf("category = %v, want upper-cased", p["category"])
		}
		if p["cover_url"] != event.ImageURLs[0] {
			t.Errorf("cover_url = %v", p["cover_url"])
		}
		start, ok := p["start_time"].(string)
		if !ok {
			t.Fatalf("start_time = %T", p["start_time"])
		}
		if _, err := time.Parse(time.RFC3339, start); err != nil {
			t.Errorf("start_time %q is not RFC3339: %v", start, err)
		}
	})

	t.Run("spontacts", func(t *testing.T) {
		p := buildPayload(model.PlatformSpontacts, event)
		if p["category_tags"] != "#tech #berlin" {
			t.Errorf("category_tags = %v", p["category_tags"])
		}
		if p["free_of_charge"] != true {
			t.Error("kostenlos price should map to free_of_charge")
		}
		if p["date"] != "2026-09-15" || p["start"] != "19:00" {
			t.Errorf("date/start = %v/%v", p["date"], p["start"])
		}
	})

	t.Run("unscheduled event carries no instant", func(t *testing.T) {
		p := buildPayload(model.PlatformMeetup, &model.Event{Title: "Sometime"})
		if _, ok := p["time"]; ok {
			t.Error("event without a date must not carry a time field")
		}
	})
}
