package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"eventverteiler/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound  = "EVENT_NOT_FOUND"
	LogNotFound    = "LOG_NOT_FOUND"
	ConfigNotFound = "CONFIG_NOT_FOUND"
	PublishError   = "PLATFORM_PUBLISH_ERROR"
	VerifyError    = "PLATFORM_VERIFY_ERROR"
	CSVError       = "CSV_HANDLER_ERROR"
	OAuthError     = "OAUTH_ERROR"
)

type CreateEventRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Date        string   `json:"date" validate:"omitempty,caldate"`
	Time        string   `json:"time" validate:"omitempty,clocktime"`
	Location    string   `json:"location"`
	Category    string   `json:"category"`
	Organizer   string   `json:"organizer"`
	URL         string   `json:"url"`
	Price       string   `json:"price"`
	Tags        []string `json:"tags"`
	ImageURLs   []string `json:"image_urls"`
	EventType   string   `json:"event_type" validate:"omitempty,eventtype"`
}

type PublishRequest struct {
	Platforms []string `json:"platforms" validate:"required,min=1,dive,platform"`
	Method    string   `json:"method" validate:"required,intmethod"`
}

type VerifyRequest struct {
	EventID string   `json:"event_id"`
	LogIDs  []string `json:"log_ids"`
}

type PlatformConfigRequest struct {
	APIEnabled        bool   `json:"api_enabled"`
	APIKey            string `json:"api_key"`
	ClientID          string `json:"client_id"`
	ClientSecret      string `json:"client_secret"`
	AutomationEnabled bool   `json:"automation_enabled"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	SessionBlob       string `json:"session_blob"`
}

type CSVImportRequest struct {
	CSVData string `json:"csv_data" validate:"required"`
}

type OAuthCallbackRequest struct {
	State string `json:"state" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// VerificationDueMessage schedules a later re-verification of freshly
// published logs through the delayed exchange.
type VerificationDueMessage struct {
	EventID string    `json:"event_id"`
	LogIDs  []string  `json:"log_ids"`
	DueAt   time.Time `json:"due_at"`
}

type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date,omitempty"`
	Time        string    `json:"time,omitempty"`
	Location    string    `json:"location,omitempty"`
	Category    string    `json:"category,omitempty"`
	Organizer   string    `json:"organizer,omitempty"`
	URL         string    `json:"url,omitempty"`
	Price       string    `json:"price,omitempty"`
	Tags        []string  `json:"tags"`
	ImageURLs   []string  `json:"image_urls"`
	EventType   string    `json:"event_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewEventResponse(e *model.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Category:    e.Category,
		Organizer:   e.Organizer,
		URL:         e.URL,
		Price:       e.Price,
		Tags:        e.Tags,
		ImageURLs:   e.ImageURLs,
		EventType:   string(e.EventType),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func NotFoundError(c *ginext.Context, code, desc string) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

// DownstreamError surfaces the underlying failure message; batch failures
// must never be silently swallowed.
func DownstreamError(c *ginext.Context, code, desc string) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
