package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventverteiler/internal/dto"
	"eventverteiler/internal/model"
	"eventverteiler/internal/oauth"
	"eventverteiler/internal/platform"
	"eventverteiler/internal/publisher"
	"eventverteiler/internal/repo"
	"eventverteiler/internal/verifier"
	"eventverteiler/pkg/validator"
)

type Service interface {
	CreateEvent(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	GetAllEvents(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)

	PublishEvent(ctx *ginext.Context)
	VerifyPublications(ctx *ginext.Context)
	GetPublicationStatus(ctx *ginext.Context)

	ListAvailablePlatforms(ctx *ginext.Context)
	GetPlatformConfig(ctx *ginext.Context)
	UpsertPlatformConfig(ctx *ginext.Context)
	TestPlatformConnection(ctx *ginext.Context)

	ImportCSV(ctx *ginext.Context)
	ExportCSV(ctx *ginext.Context)
	CSVTemplate(ctx *ginext.Context)

	OAuthAuthorize(ctx *ginext.Context)
	OAuthCallback(ctx *ginext.Context)
}

type service struct {
	repo      repo.Repository
	publisher *publisher.Publisher
	verifier  *verifier.Verifier
	registry  *platform.Registry
	states    *oauth.StateStore
	exchanger *oauth.Exchanger
	log       *zerolog.Logger
}

func NewService(
	r repo.Repository,
	pub *publisher.Publisher,
	ver *verifier.Verifier,
	reg *platform.Registry,
	states *oauth.StateStore,
	exchanger *oauth.Exchanger,
	logger *zerolog.Logger,
) Service {
	return &service{
		repo:      r,
		publisher: pub,
		verifier:  ver,
		registry:  reg,
		states:    states,
		exchanger: exchanger,
		log:       logger,
	}
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		s.log.Error().Msgf("validation failed: %v", verr)
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := eventFromRequest(&req)
	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}
	event.ID = id
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt

	s.log.Info().Str("event_id", id).Msg("event created successfully")
	dto.SuccessCreatedResponse(ctx, dto.NewEventResponse(event))
}

func (s *service) GetEvent(ctx *ginext.Context) {
	event, err := s.repo.GetEventByID(ctx, ctx.Param("id"))
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.NewEventResponse(event))
}

func (s *service) GetAllEvents(ctx *ginext.Context) {
	events, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list events")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, dto.NewEventResponse(&events[i]))
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := eventFromRequest(&req)
	event.ID = ctx.Param("id")
	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to update event")
		dto.InternalServerError(ctx)
		return
	}

	updated, err := s.repo.GetEventByID(ctx, event.ID)
	if err != nil {
		dto.EventNotFoundError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.NewEventResponse(updated))
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	if err := s.repo.DeleteEvent(ctx, ctx.Param("id")); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to delete event")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, map[string]string{"message": "Event deleted successfully"})
}

func (s *service) PublishEvent(ctx *ginext.Context) {
	eventID := ctx.Param("id")

	var req dto.PublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	platforms := make([]model.Platform, 0, len(req.Platforms))
	for _, p := range req.Platforms {
		platforms = append(platforms, model.Platform(p))
	}

	report, err := s.publisher.Publish(ctx.Request.Context(), eventID, platforms, model.Method(req.Method))
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEventNotFound):
			dto.EventNotFoundError(ctx)
		case errors.Is(err, publisher.ErrNoPlatforms), errors.Is(err, publisher.ErrInvalidTarget):
			dto.BadResponseError(ctx, dto.FieldIncorrect, err.Error())
		default:
			s.log.Error().Err(err).Str("event_id", eventID).Msg("publish failed")
			dto.DownstreamError(ctx, dto.PublishError, err.Error())
		}
		return
	}

	dto.SuccessResponse(ctx, report)
}

func (s *service) VerifyPublications(ctx *ginext.Context) {
	var req dto.VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if req.EventID == "" && len(req.LogIDs) == 0 {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Either event_id or log_ids is required")
		return
	}

	var report *verifier.Report
	var err error
	if len(req.LogIDs) > 0 {
		report, err = s.verifier.VerifyLogs(ctx.Request.Context(), req.LogIDs)
	} else {
		report, err = s.verifier.VerifyEvent(ctx.Request.Context(), req.EventID)
	}
	if err != nil {
		switch {
		case errors.Is(err, verifier.ErrNoLogs), errors.Is(err, verifier.ErrNoLogIDs):
			dto.BadResponseError(ctx, dto.FieldIncorrect, err.Error())
		default:
			s.log.Error().Err(err).Msg("verification failed")
			dto.DownstreamError(ctx, dto.VerifyError, err.Error())
		}
		return
	}

	dto.SuccessResponse(ctx, report)
}

func (s *service) GetPublicationStatus(ctx *ginext.Context) {
	eventID := ctx.Param("id")
	if _, err := s.repo.GetEventByID(ctx, eventID); err != nil {
		dto.EventNotFoundError(ctx)
		return
	}

	status, err := s.verifier.Status(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Str("event_id", eventID).Msg("failed to load publication status")
		dto.DownstreamError(ctx, dto.VerifyError, err.Error())
		return
	}
	dto.SuccessResponse(ctx, status)
}

func (s *service) ListAvailablePlatforms(ctx *ginext.Context) {
	dto.SuccessResponse(ctx, s.registry.Available())
}

func (s *service) GetPlatformConfig(ctx *ginext.Context) {
	p := model.Platform(ctx.Param("name"))
	if !p.Valid() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown platform")
		return
	}

	cfg, err := s.repo.GetPlatformConfig(ctx, p)
	if err != nil {
		if errors.Is(err, repo.ErrConfigNotFound) {
			defaults := model.DefaultPlatformConfig(p)
			dto.SuccessResponse(ctx, redactConfig(&defaults))
			return
		}
		s.log.Error().Err(err).Msg("failed to load platform config")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, redactConfig(cfg))
}

func (s *service) UpsertPlatformConfig(ctx *ginext.Context) {
	p := model.Platform(ctx.Param("name"))
	if !p.Valid() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown platform")
		return
	}

	var req dto.PlatformConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	cfg := &model.PlatformConfig{
		Platform:          p,
		APIEnabled:        req.APIEnabled,
		APIKey:            req.APIKey,
		ClientID:          req.ClientID,
		ClientSecret:      req.ClientSecret,
		AutomationEnabled: req.AutomationEnabled,
		Username:          req.Username,
		Password:          req.Password,
		SessionBlob:       req.SessionBlob,
		ConnectionStatus:  model.ConnectionDisconnected,
	}
	if err := s.repo.UpsertPlatformConfig(ctx, cfg); err != nil {
		s.log.Error().Err(err).Msg("failed to store platform config")
		dto.InternalServerError(ctx)
		return
	}

	if err := s.reloadRegistry(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to rebuild platform registry")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Str("platform", string(p)).Msg("platform config updated")
	dto.SuccessResponse(ctx, redactConfig(cfg))
}

// TestPlatformConnection probes the API-side adapter and records the result
// on the stored config.
func (s *service) TestPlatformConnection(ctx *ginext.Context) {
	p := model.Platform(ctx.Param("name"))
	if !p.Valid() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown platform")
		return
	}

	cfg, err := s.repo.GetPlatformConfig(ctx, p)
	if err != nil {
		dto.NotFoundError(ctx, dto.ConfigNotFound, "Platform is not configured")
		return
	}

	cfg.ConnectionStatus = model.ConnectionTesting
	status := model.ConnectionDisconnected
	var probeErr string

	adapter, ok := s.registry.Adapter(p, model.MethodAPI)
	if !ok {
		probeErr = "no API adapter configured"
	} else {
		check, err := adapter.VerifyEvent(ctx.Request.Context(), "connection-probe")
		switch {
		case err != nil:
			probeErr = err.Error()
		case !check.Verified:
			probeErr = check.Error
		default:
			status = model.ConnectionConnected
		}
	}

	now := time.Now()
	cfg.ConnectionStatus = status
	cfg.LastTestedAt = &now
	if err := s.repo.UpsertPlatformConfig(ctx, cfg); err != nil {
		s.log.Error().Err(err).Msg("failed to record connection test")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, map[string]any{
		"platform":          p,
		"connection_status": status,
		"last_tested_at":    now,
		"error":             probeErr,
	})
}

func (s *service) reloadRegistry(ctx *ginext.Context) error {
	configs, err := s.repo.ListPlatformConfigs(ctx)
	if err != nil {
		return err
	}
	s.registry.Reconfigure(platform.CredentialsFromConfigs(configs))
	return nil
}

// redactConfig strips secrets before a config leaves the API.
func redactConfig(cfg *model.PlatformConfig) model.PlatformConfig {
	out := *cfg
	if out.ClientSecret != "" {
		out.ClientSecret = "********"
	}
	if out.Password != "" {
		out.Password = "********"
	}
	if out.SessionBlob != "" {
		out.SessionBlob = "********"
	}
	return out
}

func eventFromRequest(req *dto.CreateEventRequest) *model.Event {
	eventType := model.EventType(req.EventType)
	if eventType == "" {
		eventType = model.EventTypeLive
	}
	return &model.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Category:    req.Category,
		Organizer:   req.Organizer,
		URL:         req.URL,
		Price:       req.Price,
		Tags:        req.Tags,
		ImageURLs:   req.ImageURLs,
		EventType:   eventType,
	}
}
