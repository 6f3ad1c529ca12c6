package platform

import (
	"fmt"
	"strings"
	"time"

	"eventverteiler/internal/model"
)

// All event times are interpreted in a fixed timezone; the dashboard does
// not carry per-event zones.
var eventZone = mustZone()

func mustZone() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.UTC
	}
	return loc
}

// eventInstant combines the free-standing date and wall-clock time fields
// into one instant. Missing time defaults to start of day; missing date
// means the event has no schedulable instant.
func eventInstant(e *model.Event) (time.Time, bool) {
	if e.Date == "" {
		return time.Time{}, false
	}
	layout := "2006-01-02"
	value := e.Date
	if e.Time != "" {
		layout = "2006-01-02 15:04"
		value = e.Date + " " + e.Time
	}
	t, err := time.ParseInLocation(layout, value, eventZone)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// isFreeEvent maps the free-text price field onto the boolean some platform
// payloads require. Empty, "kostenlos" and "free" (any casing, anywhere in
// the string) count as free.
func isFreeEvent(price string) bool {
	if strings.TrimSpace(price) == "" {
		return true
	}
	lower := strings.ToLower(price)
	return strings.Contains(lower, "kostenlos") || strings.Contains(lower, "free")
}

// augmentedDescription folds organizer, price, url and tags into the
// description for platforms without dedicated fields for them.
func augmentedDescription(e *model.Event) string {
	var b strings.Builder
	b.WriteString(e.Description)
	if e.Organizer != "" {
		fmt.Fprintf(&b, "\n\nOrganizer: %s", e.Organizer)
	}
	if e.Price != "" {
		fmt.Fprintf(&b, "\nPrice: %s", e.Price)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, "\nMore info: %s", e.URL)
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(&b, "\n\n%s", hashTags(e.Tags))
	}
	return strings.TrimSpace(b.String())
}

func hashTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, "#"+strings.ReplaceAll(t, " ", ""))
	}
	return strings.Join(out, " ")
}

// buildPayload maps an Event onto the platform's native create-event shape.
// Each platform has its own field names and conventions for joining tags.
func buildPayload(p model.Platform, e *model.Event) map[string]any {
	instant, hasInstant := eventInstant(e)

	switch p {
	case model.PlatformMeetup:
		payload := map[string]any{
			"name":        e.Title,
			"description": augmentedDescription(e),
			"venue_name":  e.Location,
			"topics":      strings.Join(e.Tags, ", "),
		}
		if hasInstant {
			payload["time"] = instant.UnixMilli()
		}
		if e.EventType == model.EventTypeVirtual {
			payload["is_online_event"] = true
		}
		return payload

	case model.PlatformEventbrite:
		payload := map[string]any{
			"event": map[string]any{
				"name":        map[string]any{"html": e.Title},
				"description": map[string]any{"html": augmentedDescription(e)},
				"online_event": e.EventType == model.EventTypeVirtual ||
					e.EventType == model.EventTypeHybrid,
			},
			"is_free": isFreeEvent(e.Price),
		}
		if hasInstant {
			payload["start"] = map[string]any{
				"timezone": eventZone.String(),
				"utc":      instant.UTC().Format(time.RFC3339),
			}
		}
		return payload

	case model.PlatformFacebook:
		payload := map[string]any{
			"name":        e.Title,
			"description": augmentedDescription(e),
			"place":       e.Location,
			"is_online":   e.EventType == model.EventTypeVirtual,
			"category":    strings.ToUpper(e.Category),
		}
		if hasInstant {
			payload["start_time"] = instant.Format(time.RFC3339)
		}
		if len(e.ImageURLs) > 0 {
			payload["cover_url"] = e.ImageURLs[0]
		}
		return payload

	case model.PlatformSpontacts:
		payload := map[string]any{
			"title":          e.Title,
			"description":    augmentedDescription(e),
			"city":           e.Location,
			"category_tags":  hashTags(e.Tags),
			"free_of_charge": isFreeEvent(e.Price),
		}
		if hasInstant {
			payload["date"] = instant.Format("2006-01-02")
			payload["start"] = instant.Format("15:04")
		}
		return payload
	}

	return map[string]any{"name": e.Title}
}
