package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventverteiler/internal/model"
)

// Endpoints for the platforms that support an OAuth code flow. Spontacts has
// no public OAuth surface; its adapter authenticates with a static key.
var tokenEndpoints = map[model.Platform]string{
	model.PlatformMeetup:     "https://secure.meetup.com/oauth2/access",
	model.PlatformEventbrite: "https://www.eventbrite.com/oauth/token",
	model.PlatformFacebook:   "https://graph.facebook.com/v18.0/oauth/access_token",
}

var authEndpoints = map[model.Platform]string{
	model.PlatformMeetup:     "https://secure.meetup.com/oauth2/authorize",
	model.PlatformEventbrite: "https://www.eventbrite.com/oauth/authorize",
	model.PlatformFacebook:   "https://www.facebook.com/v18.0/dialog/oauth",
}

type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Exchanger runs the code-for-token exchange against a platform's token
// endpoint.
type Exchanger struct {
	client      *http.Client
	redirectURI string
}

func NewExchanger(redirectURI string) *Exchanger {
	return &Exchanger{
		client:      &http.Client{Timeout: 15 * time.Second},
		redirectURI: redirectURI,
	}
}

// AuthorizeURL builds the platform's authorization URL carrying the given
// state token.
func (e *Exchanger) AuthorizeURL(p model.Platform, clientID, state string) (string, error) {
	endpoint, ok := authEndpoints[p]
	if !ok {
		return "", fmt.Errorf("platform %s does not support oauth", p)
	}
	params := url.Values{
		"client_id":     {clientID},
		"redirect_uri":  {e.redirectURI},
		"response_type": {"code"},
		"state":         {state},
	}
	return endpoint + "?" + params.Encode(), nil
}

// Exchange trades an authorization code for an access token.
func (e *Exchanger) Exchange(ctx context.Context, p model.Platform, clientID, clientSecret, code string) (*Token, error) {
	endpoint, ok := tokenEndpoints[p]
	if !ok {
		return nil, fmt.Errorf("platform %s does not support oauth", p)
	}

	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {e.redirectURI},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		Scope        string `json:"scope"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	return &Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		TokenType:    body.TokenType,
		Scope:        body.Scope,
		ExpiresAt:    time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}
