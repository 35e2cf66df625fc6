package supply

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const loginPath = "/api/cabinet/v1/account/login"

// AuthError reports a failed credential exchange with the Supply cabinet.
type AuthError struct {
	StatusCode int
	Reason     string
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("supply auth failed: %s (status %d)", e.Reason, e.StatusCode)
	}
	return "supply auth failed: " + e.Reason
}

// TokenCache holds the bearer token for the Supply API and its expiry.
// Expiry is set to now + lifetime on every exchange; lifetime should stay
// shorter than the real server-side token lifetime.
//
// There is deliberately no lock: concurrent callers may each trigger a
// refresh, which costs one extra login and nothing else. Each worker owns
// its own cache instance.
type TokenCache struct {
	client   *resty.Client
	phone    string
	password string
	lifetime time.Duration

	token  string
	expiry time.Time

	now func() time.Time // injectable clock for tests
}

// NewTokenCache builds the cache around the Supply cabinet login endpoint.
func NewTokenCache(baseURL, phone, password string, lifetime time.Duration) *TokenCache {
	return &TokenCache{
		client:   resty.New().SetBaseURL(baseURL).SetTimeout(30 * time.Second),
		phone:    phone,
		password: password,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Get returns a valid bearer token. A cached token is reused while
// now < expiry unless forceRefresh is set; otherwise the credentials are
// exchanged again.
func (c *TokenCache) Get(ctx context.Context, forceRefresh bool) (string, error) {
	if !forceRefresh && c.valid() {
		return c.token, nil
	}
	if err := c.refresh(ctx); err != nil {
		return "", err
	}
	return c.token, nil
}

func (c *TokenCache) valid() bool {
	return c.token != "" && c.now().Before(c.expiry)
}

func (c *TokenCache) refresh(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"phone":      c.phone,
			"password":   c.password,
			"rememberMe": true,
		}).
		Post(loginPath)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &AuthError{StatusCode: resp.StatusCode(), Reason: "login rejected"}
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return &AuthError{StatusCode: resp.StatusCode(), Reason: "unparseable login response"}
	}
	if body.AccessToken == "" {
		return &AuthError{StatusCode: resp.StatusCode(), Reason: "no access token in response"}
	}

	c.token = body.AccessToken
	c.expiry = c.now().Add(c.lifetime)
	return nil
}
