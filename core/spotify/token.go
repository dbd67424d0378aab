package spotify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/imroc/req/v3"
	"github.com/tidwall/gjson"
)

const accountsTokenURL = "https://accounts.spotify.com/api/token"

// expirySlack is subtracted from the reported lifetime so a token close to
// expiry is never handed out.
const expirySlack = 30 * time.Second

// TokenProvider holds the client-credentials bearer token and refreshes it
// lazily on first use after expiry. It is the one piece of intentionally
// shared mutable state in the process; the mutex keeps concurrent refreshes
// from serving a stale token.
type TokenProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	http         *req.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenProvider(clientID, clientSecret string) *TokenProvider {
	return &TokenProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     accountsTokenURL,
		http:         req.C().SetTimeout(10 * time.Second),
	}
}

// SetTokenURL overrides the token endpoint. Used by tests.
func (p *TokenProvider) SetTokenURL(url string) { p.tokenURL = url }

// GetValidToken returns a bearer token guaranteed not to be past its
// reported expiry, refreshing it if needed.
func (p *TokenProvider) GetValidToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expiresAt) {
		return p.token, nil
	}

	if p.clientID == "" || p.clientSecret == "" {
		return "", fmt.Errorf("spotify credentials not configured")
	}

	resp, err := p.http.R().
		SetContext(ctx).
		SetBasicAuth(p.clientID, p.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		Post(p.tokenURL)
	if err != nil {
		return "", fmt.Errorf("spotify token request failed: %w", err)
	}
	if resp.IsErrorState() {
		return "", fmt.Errorf("spotify token endpoint returned status %d", resp.StatusCode)
	}

	body := resp.String()
	token := gjson.Get(body, "access_token").String()
	expiresIn := gjson.Get(body, "expires_in").Int()
	if token == "" || expiresIn <= 0 {
		return "", fmt.Errorf("spotify token response missing access_token")
	}

	p.token = token
	p.expiresAt = time.Now().Add(time.Duration(expiresIn)*time.Second - expirySlack)
	return p.token, nil
}
