package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UserInfoURL  string
	// Endpoint defaults to Google.
	Endpoint oauth2.Endpoint
}

// Identity is the profile returned by the provider's userinfo endpoint.
type Identity struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

type OAuthClient struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewOAuthClient(cfg OAuthConfig) *OAuthClient {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = endpoints.Google
	}

	return &OAuthClient{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

func (c *OAuthClient) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's identity.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*Identity, error) {
	tok, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, eris.Wrap(err, "oauth: exchange code")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "oauth: build userinfo request")
	}

	resp, err := c.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "oauth: fetch userinfo")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("oauth: userinfo status %d: %s", resp.StatusCode, body)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, eris.Wrap(err, "oauth: decode userinfo")
	}
	if id.Email == "" {
		return nil, eris.New("oauth: userinfo has no email")
	}
	return &id, nil
}
