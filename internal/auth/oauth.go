package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

const (
	discordAuthURL     = "https://discord.com/oauth2/authorize"
	discordTokenURL    = "https://discord.com/api/oauth2/token"
	discordUserInfoURL = "https://discord.com/api/users/@me"

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// OAuthIdentity is the provider-agnostic result of a completed OAuth flow.
type OAuthIdentity struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

func providerIDColumn(provider string) (string, error) {
	switch provider {
	case "google":
		return "google_id", nil
	case "discord":
		return "discord_id", nil
	default:
		return "", ErrUnknownProvider
	}
}

// OAuthProvider wraps an oauth2.Config plus the provider's userinfo
// endpoint. The userinfo URL is overridable for tests.
type OAuthProvider struct {
	Name        string
	config      *oauth2.Config
	UserInfoURL string
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name: "google",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UserInfoURL: googleUserInfoURL,
	}
}

func NewDiscordProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name: "discord",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"identify", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  discordAuthURL,
				TokenURL: discordTokenURL,
			},
		},
		UserInfoURL: discordUserInfoURL,
	}
}

// Configured reports whether client credentials were supplied.
func (p *OAuthProvider) Configured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for a token and resolves the
// provider's user info into an OAuthIdentity.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*OAuthIdentity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging oauth code: %w", err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(p.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetching user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed: status %d", resp.StatusCode)
	}

	switch p.Name {
	case "google":
		var info struct {
			Sub     string `json:"sub"`
			Email   string `json:"email"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("decoding user info: %w", err)
		}
		return &OAuthIdentity{
			Provider:   p.Name,
			ProviderID: info.Sub,
			Email:      info.Email,
			Name:       info.Name,
			AvatarURL:  info.Picture,
		}, nil
	case "discord":
		var info struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
			Avatar   string `json:"avatar"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("decoding user info: %w", err)
		}
		avatarURL := ""
		if info.Avatar != "" {
			avatarURL = fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", info.ID, info.Avatar)
		}
		return &OAuthIdentity{
			Provider:   p.Name,
			ProviderID: info.ID,
			Email:      info.Email,
			Name:       info.Username,
			AvatarURL:  avatarURL,
		}, nil
	default:
		return nil, ErrUnknownProvider
	}
}
