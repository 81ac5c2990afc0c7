package wix

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	InstanceID   string `json:"instance_id"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// appTokenSource mints client-credential access tokens scoped to one site.
// The Wix endpoint takes a JSON body, which x/oauth2/clientcredentials cannot send.
type appTokenSource struct {
	client     *Client
	instanceID string
}

func (s *appTokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.client.cfg.Timeout)
	defer cancel()

	var out tokenResponse
	resp, err := s.client.http.R().
		SetContext(ctx).
		SetBody(tokenRequest{
			GrantType:    "client_credentials",
			ClientID:     s.client.cfg.AppID,
			ClientSecret: s.client.cfg.AppSecret,
			InstanceID:   s.instanceID,
		}).
		SetResult(&out).
		SetError(&errorBody{}).
		Post("/oauth2/token")
	if err := checkResponse("create access token", resp, err); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("wix create access token: empty token for instance %s", s.instanceID)
	}

	tok := &oauth2.Token{AccessToken: out.AccessToken, TokenType: out.TokenType}
	if out.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return tok, nil
}

type cachedSource struct {
	src      oauth2.TokenSource
	lastUsed time.Time
}

// tokenSource returns the cached per-site source, refreshing only near expiry.
// Once the cache is full the least recently used site is dropped; it simply
// mints a new token on its next call.
func (c *Client) tokenSource(instanceID string) oauth2.TokenSource {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if entry, ok := c.sources[instanceID]; ok {
		entry.lastUsed = now
		return entry.src
	}
	for len(c.sources) >= c.cfg.MaxTokenSources {
		c.evictOldestLocked()
	}
	src := oauth2.ReuseTokenSource(nil, &appTokenSource{client: c, instanceID: instanceID})
	c.sources[instanceID] = &cachedSource{src: src, lastUsed: now}
	return src
}

func (c *Client) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, entry := range c.sources {
		if oldestID == "" || entry.lastUsed.Before(oldest) {
			oldestID, oldest = id, entry.lastUsed
		}
	}
	delete(c.sources, oldestID)
}
