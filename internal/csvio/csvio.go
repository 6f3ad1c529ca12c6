package csvio

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"eventverteiler/internal/model"
)

// Column order matches the dashboard's import/export template.
var header = []string{
	"title", "description", "date", "time", "location", "category",
	"organizer", "url", "price", "tags", "image_urls", "event_type",
}

const listSeparator = ";"

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Events []model.Event `json:"events"`
	Errors []RowError    `json:"errors"`
}

// Template returns an importable CSV skeleton with one example row.
func Template() string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(header)
	_ = w.Write([]string{
		"Tech Meetup Berlin", "Monthly community meetup", "2026-09-15", "19:00",
		"Berlin", "Technology", "Community e.V.", "https://example.org/meetup",
		"Kostenlos", "tech;berlin", "", "live",
	})
	w.Flush()
	return b.String()
}

// Export renders events in template column order.
func Export(events []model.Event) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range events {
		record := []string{
			e.Title, e.Description, e.Date, e.Time, e.Location, e.Category,
			e.Organizer, e.URL, e.Price,
			strings.Join(e.Tags, listSeparator),
			strings.Join(e.ImageURLs, listSeparator),
			string(e.EventType),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return b.String(), nil
}

// Parse reads CSV data into events, validating per row. Invalid rows are
// reported, not fatal; the caller decides whether to import the valid rest.
func Parse(data string) (*ImportResult, error) {
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv data is empty")
	}

	cols := columnIndex(records[0])
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("csv header is missing the title column")
	}

	result := &ImportResult{}
	for i, record := range records[1:] {
		rowNum := i + 2 // 1-based, after header
		event, rowErrs := parseRow(cols, record)
		if len(rowErrs) > 0 {
			for _, msg := range rowErrs {
				result.Errors = append(result.Errors, RowError{Row: rowNum, Message: msg})
			}
			continue
		}
		result.Events = append(result.Events, event)
	}
	return result, nil
}

func columnIndex(headerRow []string) map[string]int {
	cols := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func parseRow(cols map[string]int, record []string) (model.Event, []string) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var errs []string

	title := field("title")
	if title == "" {
		errs = append(errs, "title is required")
	}

	date := field("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			errs = append(errs, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
		}
	}

	clock := field("time")
	if clock != "" {
		if _, err := time.Parse("15:04", clock); err != nil {
			errs = append(errs, fmt.Sprintf("invalid time %q, expected HH:MM", clock))
		}
	}

	eventType := model.EventType(field("event_type"))
	if eventType == "" {
		eventType = model.EventTypeLive
	}
	switch eventType {
	case model.EventTypeVirtual, model.EventTypeLive, model.EventTypeHybrid:
	default:
		errs = append(errs, fmt.Sprintf("invalid event_type %q", eventType))
	}

	if len(errs) > 0 {
		return model.Event{}, errs
	}

	return model.Event{
		Title:       title,
		Description: field("description"),
		Date:        date,
		Time:        clock,
		Location:    field("location"),
		Category:    field("category"),
		Organizer:   field("organizer"),
		URL:         field("url"),
		Price:       field("price"),
		Tags:        splitList(field("tags")),
		ImageURLs:   splitList(field("image_urls")),
		EventType:   eventType,
	}, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, listSeparator)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
