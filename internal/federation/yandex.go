package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	yandexoauth2 "golang.org/x/oauth2/yandex"
)

// YandexUserInfoURL is Yandex's profile endpoint. Unlike Google there is no
// ID token; the opaque access token is presented here instead.
var YandexUserInfoURL = "https://login.yandex.ru/info"

// YandexProvider authenticates users through Yandex OAuth.
type YandexProvider struct {
	oauth *oauth2.Config
}

// NewYandexProvider creates a YandexProvider for one registered OAuth client.
func NewYandexProvider(clientID, clientSecret, redirectURI string) *YandexProvider {
	return &YandexProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     yandexoauth2.Endpoint,
		},
	}
}

func (y *YandexProvider) Name() string { return "yandex" }

func (y *YandexProvider) RedirectURL() string {
	return y.oauth.AuthCodeURL("", oauth2.SetAuthURLParam("force_confirm", "true"))
}

// ExchangeCode trades the authorization code for an access token and reads
// the user's profile with it.
func (y *YandexProvider) ExchangeCode(ctx context.Context, code string) (*Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	tok, err := y.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("yandex code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, YandexUserInfoURL+"?format=json", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "OAuth "+tok.AccessToken)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching yandex profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yandex profile endpoint returned status %d: %s", resp.StatusCode, body)
	}

	var profile struct {
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		DefaultEmail string `json:"default_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding yandex profile: %w", err)
	}

	return &Identity{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.DefaultEmail,
	}, nil
}
