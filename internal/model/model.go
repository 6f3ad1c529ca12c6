package model

import "time"

type EventType string

const (
	EventTypeVirtual EventType = "virtual"
	EventTypeLive    EventType = "live"
	EventTypeHybrid  EventType = "hybrid"
)

type Event struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description,omitempty" json:"description,omitempty"`
	Date        string    `db:"date,omitempty" json:"date,omitempty"` // YYYY-MM-DD
	Time        string    `db:"time,omitempty" json:"time,omitempty"` // HH:MM
	Location    string    `db:"location,omitempty" json:"location,omitempty"`
	Category    string    `db:"category,omitempty" json:"category,omitempty"`
	Organizer   string    `db:"organizer,omitempty" json:"organizer,omitempty"`
	URL         string    `db:"url,omitempty" json:"url,omitempty"`
	Price       string    `db:"price,omitempty" json:"price,omitempty"`
	Tags        []string  `db:"tags" json:"tags"`
	ImageURLs   []string  `db:"image_urls" json:"image_urls"`
	EventType   EventType `db:"event_type" json:"event_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Platform string

const (
	PlatformMeetup     Platform = "meetup"
	PlatformEventbrite Platform = "eventbrite"
	PlatformFacebook   Platform = "facebook"
	PlatformSpontacts  Platform = "spontacts"
)

func Platforms() []Platform {
	return []Platform{PlatformMeetup, PlatformEventbrite, PlatformFacebook, PlatformSpontacts}
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformMeetup, PlatformEventbrite, PlatformFacebook, PlatformSpontacts:
		return true
	}
	return false
}

type Method string

const (
	MethodAPI        Method = "api"
	MethodAutomation Method = "automation"
)

func (m Method) Valid() bool {
	return m == MethodAPI || m == MethodAutomation
}

// PublicationStatus is the lifecycle of one publish attempt. "idle" exists
// only in the dashboard and is never persisted.
type PublicationStatus string

const (
	StatusPending  PublicationStatus = "pending"
	StatusSuccess  PublicationStatus = "success"
	StatusFailed   PublicationStatus = "failed"
	StatusVerified PublicationStatus = "verified"
)

// PublicationLog is the durable record of one (event, platform, method)
// publish attempt. Create-phase and verify-phase failures are kept in
// separate columns so a later verification cannot erase the original error.
type PublicationLog struct {
	ID              string            `db:"id" json:"id"`
	EventID         string            `db:"event_id" json:"event_id"`
	Platform        Platform          `db:"platform" json:"platform"`
	Method          Method            `db:"method" json:"method"`
	Status          PublicationStatus `db:"status" json:"status"`
	PlatformEventID string            `db:"platform_event_id,omitempty" json:"platform_event_id,omitempty"`
	ErrorDetails    string            `db:"error_details,omitempty" json:"error_details,omitempty"`
	VerifyError     string            `db:"verify_error,omitempty" json:"verify_error,omitempty"`
	ScreenshotRef   string            `db:"screenshot_ref,omitempty" json:"screenshot_ref,omitempty"`
	PublishedAt     time.Time         `db:"published_at" json:"published_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

type ConnectionStatus string

const (
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionDisconnected ConnectionStatus = "disconnected"
	ConnectionTesting      ConnectionStatus = "testing"
)

// PlatformConfig aggregates both integration methods' settings for one
// platform. Persisted keyed by platform name with upsert semantics.
type PlatformConfig struct {
	Platform          Platform         `db:"platform" json:"platform"`
	APIEnabled        bool             `db:"api_enabled" json:"api_enabled"`
	APIKey            string           `db:"api_key,omitempty" json:"api_key,omitempty"`
	ClientID          string           `db:"client_id,omitempty" json:"client_id,omitempty"`
	ClientSecret      string           `db:"client_secret,omitempty" json:"client_secret,omitempty"`
	AutomationEnabled bool             `db:"automation_enabled" json:"automation_enabled"`
	Username          string           `db:"username,omitempty" json:"username,omitempty"`
	Password          string           `db:"password,omitempty" json:"password,omitempty"`
	SessionBlob       string           `db:"session_blob,omitempty" json:"session_blob,omitempty"`
	ConnectionStatus  ConnectionStatus `db:"connection_status" json:"connection_status"`
	LastTestedAt      *time.Time       `db:"last_tested_at,omitempty" json:"last_tested_at,omitempty"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// DefaultPlatformConfig mirrors the dashboard defaults: everything off,
// nothing connected.
func DefaultPlatformConfig(p Platform) PlatformConfig {
	return PlatformConfig{
		Platform:         p,
		ConnectionStatus: ConnectionDisconnected,
	}
}
