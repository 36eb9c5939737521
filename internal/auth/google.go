package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rolodex/internal/config"
	"rolodex/internal/models"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// IdentityProvider abstracts the federated login flow so the auth service
// and handlers can be tested without Google.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.GoogleProfile, error)
}

// GoogleProvider drives the OAuth2 authorization-code flow against Google.
type GoogleProvider struct {
	clientID     string
	clientSecret string
	redirectURL  string
	authURL      string
	tokenURL     string
	userinfoURL  string
	httpClient   *http.Client
}

func NewGoogleProvider(cfg *config.GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
		authURL:      googleAuthURL,
		tokenURL:     googleTokenURL,
		userinfoURL:  googleUserinfoURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL builds the consent-screen redirect for the given state nonce.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	u, _ := url.Parse(p.authURL)
	q := u.Query()
	q.Set("client_id", p.clientID)
	q.Set("redirect_uri", p.redirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid profile email")
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

// Exchange trades an authorization code for the verified Google profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*models.GoogleProfile, error) {
	form := url.Values{}
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", p.redirectURL)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token response missing access token")
	}

	return p.fetchProfile(ctx, tok.AccessToken)
}

func (p *GoogleProvider) fetchProfile(ctx context.Context, accessToken string) (*models.GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo fetch returned status %d", resp.StatusCode)
	}

	var data struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if data.Sub == "" {
		return nil, errors.New("userinfo missing subject id")
	}

	return &models.GoogleProfile{
		Subject: data.Sub,
		Email:   data.Email,
		Name:    data.Name,
		Picture: data.Picture,
	}, nil
}
