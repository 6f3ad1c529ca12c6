package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"eventverteiler/internal/dto"
	"eventverteiler/internal/model"
	"eventverteiler/internal/oauth"
	"eventverteiler/pkg/validator"
)

// OAuthAuthorize issues a state token and returns the platform's
// authorization URL for the dashboard to open.
func (s *service) OAuthAuthorize(ctx *ginext.Context) {
	p := model.Platform(ctx.Param("platform"))
	if !p.Valid() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Unknown platform")
		return
	}

	cfg, err := s.repo.GetPlatformConfig(ctx, p)
	if err != nil || cfg.ClientID == "" {
		dto.BadResponseError(ctx, dto.OAuthError, "Platform has no OAuth client configured")
		return
	}

	state := s.states.Issue(p, ctx.Query("redirect_path"))
	authURL, err := s.exchanger.AuthorizeURL(p, cfg.ClientID, state)
	if err != nil {
		dto.BadResponseError(ctx, dto.OAuthError, err.Error())
		return
	}

	dto.SuccessResponse(ctx, map[string]string{
		"authorization_url": authURL,
		"state":             state,
	})
}

// OAuthCallback validates the state, exchanges the code and stores the
// obtained access token as the platform's API key.
func (s *service) OAuthCallback(ctx *ginext.Context) {
	var req dto.OAuthCallbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	state, err := s.states.Consume(req.State)
	if err != nil {
		if errors.Is(err, oauth.ErrStateInvalid) {
			dto.BadResponseError(ctx, dto.OAuthError, "OAuth state invalid or expired")
			return
		}
		dto.InternalServerError(ctx)
		return
	}

	cfg, err := s.repo.GetPlatformConfig(ctx, state.Platform)
	if err != nil {
		dto.NotFoundError(ctx, dto.ConfigNotFound, "Platform is not configured")
		return
	}

	token, err := s.exchanger.Exchange(ctx.Request.Context(), state.Platform, cfg.ClientID, cfg.ClientSecret, req.Code)
	if err != nil {
		s.log.Error().Err(err).Str("platform", string(state.Platform)).Msg("token exchange failed")
		dto.DownstreamError(ctx, dto.OAuthError, err.Error())
		return
	}

	cfg.APIKey = token.AccessToken
	cfg.APIEnabled = true
	cfg.ConnectionStatus = model.ConnectionConnected
	if err := s.repo.UpsertPlatformConfig(ctx, cfg); err != nil {
		s.log.Error().Err(err).Msg("failed to store OAuth token")
		dto.InternalServerError(ctx)
		return
	}

	if err := s.reloadRegistry(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to rebuild platform registry")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().
		Str("platform", string(state.Platform)).
		Time("token_expires_at", token.ExpiresAt).
		Msg("OAuth flow completed")

	dto.SuccessResponse(ctx, map[string]any{
		"platform":      state.Platform,
		"expires_at":    token.ExpiresAt,
		"redirect_path": state.RedirectPath,
	})
}
