package security

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/drive-clone/api/src/services/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthIdentity is the account information returned by a provider
type OAuthIdentity struct {
	Email string
	Name  string
}

// OAuthProvider performs the authorization-code flow of one provider
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*OAuthIdentity, error)
}

// GoogleOAuthProvider signs users in with their Google account
type GoogleOAuthProvider struct {
	config      *oauth2.Config
	userInfoURL string
	retry       common.RetryConfig
	logger      *logrus.Logger
}

// NewGoogleOAuthProvider creates the Google provider
func NewGoogleOAuthProvider(clientID, clientSecret, redirectURL string, logger *logrus.Logger) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		retry:       common.DefaultRetryConfig(),
		logger:      logger,
	}
}

func (p *GoogleOAuthProvider) Name() string {
	return "google"
}

func (p *GoogleOAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the code for a token and fetches the user's profile
func (p *GoogleOAuthProvider) Exchange(ctx context.Context, code string) (*OAuthIdentity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	// The code is spent at this point; only the profile fetch is retried.
	client := common.NewResilientHTTPClient(p.config.Client(ctx, token), p.retry, p.logger)
	resp, err := client.Do(ctx, "google userinfo", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var info struct {
		Email         string `json:"email"`
		Name          string `json:"name"`
		VerifiedEmail *bool  `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode google userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("google account has no email address")
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return nil, fmt.Errorf("google email address is not verified")
	}

	return &OAuthIdentity{Email: strings.ToLower(info.Email), Name: info.Name}, nil
}
