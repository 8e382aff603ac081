package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"showdownbot/src-server/model"
)

// GitHub performs the OAuth web flow used to link a GitHub account.
type GitHub struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	OAuthBaseURL string
	APIBaseURL   string
	HTTPClient   *http.Client
}

func NewGitHub(c *Config) *GitHub {
	return &GitHub{
		ClientID:     c.GetGitHubClientID(),
		ClientSecret: c.GetGitHubClientSecret(),
		RedirectURL:  c.GetPublicURL() + "/showdown?action=callback/github",
		OAuthBaseURL: "https://github.com",
		APIBaseURL:   "https://api.github.com",
		HTTPClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *GitHub) AuthorizeURL(state string) string {
	return g.OAuthBaseURL + "/login/oauth/authorize?" + url.Values{
		"client_id":    {g.ClientID},
		"redirect_uri": {g.RedirectURL},
		"state":        {state},
	}.Encode()
}

// ExchangeCode trades an OAuth code for an access token.
func (g *GitHub) ExchangeCode(ctx context.Context, code string) (string, error) {
	query := url.Values{
		"client_id":     {g.ClientID},
		"client_secret": {g.ClientSecret},
		"code":          {code},
		"redirect_uri":  {g.RedirectURL},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.OAuthBaseURL+"/login/oauth/access_token?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("ExchangeCode: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var body struct {
		AccessToken      string `json:"access_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := g.do(req, &body); err != nil {
		return "", fmt.Errorf("ExchangeCode: unable to exchange code for access token: %w", err)
	}
	if body.Error != "" {
		return "", fmt.Errorf("ExchangeCode: %s: %s", body.Error, body.ErrorDescription)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("ExchangeCode: no access token in response")
	}
	return body.AccessToken, nil
}

func (g *GitHub) User(ctx context.Context, accessToken string) (model.GitHubUser, error) {
	var user model.GitHubUser
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.APIBaseURL+"/user", nil)
	if err != nil {
		return user, fmt.Errorf("User: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	if err := g.do(req, &user); err != nil {
		return user, fmt.Errorf("User: unable to get GitHub profile: %w", err)
	}
	if user.Login == "" {
		return user, fmt.Errorf("User: GitHub profile has no login")
	}
	return user, nil
}

func (g *GitHub) do(req *http.Request, out any) error {
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
