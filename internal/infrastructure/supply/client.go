package supply

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	orderCreatePath      = "/api/cabinet/v1/orders/1c"
	branchesLookupPath   = "/api/cabinet/v1/branches/lookup"
	warehousesLookupPath = "/api/cabinet/v1/warehouses/lookup"
)

// Client delivers transformed orders to the Supply API with a bounded retry
// loop. Every failure mode is converted into an Outcome; Send never returns
// an error, so the caller can always finish its own transaction and persist
// the result.
type Client struct {
	http       *resty.Client
	tokens     *TokenCache
	retryDelay time.Duration
	log        zerolog.Logger

	sleep func(time.Duration) // injectable for tests
}

// NewClient builds the Supply client. retryDelay is the base of the linear
// backoff: attempt n waits retryDelay * n before the next try.
func NewClient(baseURL string, tokens *TokenCache, retryDelay time.Duration, log zerolog.Logger) *Client {
	return &Client{
		http:       resty.New().SetBaseURL(baseURL).SetTimeout(60 * time.Second),
		tokens:     tokens,
		retryDelay: retryDelay,
		log:        log,
		sleep:      time.Sleep,
	}
}

// Send posts the order payload, retrying up to maxRetries attempts.
//
// Classification per attempt:
//   - 2xx: success, loop exits with the response body captured.
//   - 401/403: the token is refreshed and the attempt slot is consumed,
//     without backoff.
//   - other 4xx/5xx and transport errors: linear backoff, then retry.
//
// The returned Outcome always carries status, body/error text and the
// attempt count, whatever the exit path.
func (c *Client) Send(ctx context.Context, payload OrderPayload, maxRetries int) (bool, Outcome) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var out Outcome
	forceRefresh := false

	for attempt := 1; attempt <= maxRetries; attempt++ {
		out.Attempts = attempt

		token, err := c.tokens.Get(ctx, forceRefresh)
		forceRefresh = false
		if err != nil {
			// Drop any response captured on an earlier attempt so the
			// recorded outcome describes this failure, not a stale one.
			out.StatusCode = 0
			out.Body = ""
			out.Class = ClassAuth
			out.Error = err.Error()
			c.log.Warn().Int("attempt", attempt).Err(err).Msg("supply auth failed")
			if attempt < maxRetries {
				c.sleep(c.retryDelay * time.Duration(attempt))
				continue
			}
			return false, out
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post(orderCreatePath)
		if err != nil {
			out.StatusCode = 0
			out.Class = ClassTransport
			out.Error = err.Error()
			c.log.Warn().Int("attempt", attempt).Err(err).Msg("supply request failed")
			if attempt < maxRetries {
				c.sleep(c.retryDelay * time.Duration(attempt))
				continue
			}
			return false, out
		}

		out.StatusCode = resp.StatusCode()
		out.Body = string(resp.Body())

		switch {
		case resp.StatusCode() >= 200 && resp.StatusCode() < 300:
			out.Success = true
			out.Class = ClassNone
			out.Error = ""
			c.log.Info().
				Str("order", payload.OrderNumber).
				Int("attempt", attempt).
				Msg("order delivered to supply")
			return true, out

		case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
			// The token is likely expired; refresh on the next attempt.
			// This consumes a retry slot but skips the backoff sleep.
			out.Class = ClassAuth
			out.Error = fmt.Sprintf("supply rejected the token (status %d)", resp.StatusCode())
			c.log.Warn().Int("attempt", attempt).Int("status", resp.StatusCode()).Msg("supply auth rejected, refreshing token")
			forceRefresh = true
			continue

		default:
			out.Class = ClassAPI
			out.Error = fmt.Sprintf("supply api error: status %d", resp.StatusCode())
			c.log.Warn().
				Int("attempt", attempt).
				Int("status", resp.StatusCode()).
				Str("body", out.Body).
				Msg("supply api error")
			if attempt < maxRetries {
				c.sleep(c.retryDelay * time.Duration(attempt))
				continue
			}
			return false, out
		}
	}

	return false, out
}

// Branches fetches the branch lookup. Single authenticated GET, no retry.
func (c *Client) Branches(ctx context.Context) ([]Branch, error) {
	var branches []Branch
	if err := c.lookup(ctx, branchesLookupPath, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// Warehouses fetches the warehouse lookup. Single authenticated GET, no retry.
func (c *Client) Warehouses(ctx context.Context) ([]Warehouse, error) {
	var warehouses []Warehouse
	if err := c.lookup(ctx, warehousesLookupPath, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (c *Client) lookup(ctx context.Context, path string, result interface{}) error {
	token, err := c.tokens.Get(ctx, false)
	if err != nil {
		return err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(result).
		Get(path)
	if err != nil {
		return fmt.Errorf("supply lookup %s: %w", path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("supply lookup %s: status %d", path, resp.StatusCode())
	}
	return nil
}
