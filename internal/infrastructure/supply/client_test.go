package supply

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopspring/decimal"
)

// supplyServer fakes both the cabinet login and the order endpoint. orderFn
// and loginFn decide the answer for each call, in call order.
type supplyServer struct {
	*httptest.Server
	logins  int
	orders  int
	tokens  []string // bearer token seen on each order POST
	orderFn func(call int) (status int, body string)
	loginFn func(call int) (status int, token string)
}

func newSupplyServer(t *testing.T) *supplyServer {
	t.Helper()
	s := &supplyServer{
		orderFn: func(int) (int, string) { return http.StatusOK, `{"id":"ord-1"}` },
		loginFn: func(call int) (int, string) { return http.StatusOK, fmt.Sprintf("tok-%d", call) },
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			s.logins++
			status, token := s.loginFn(s.logins)
			w.WriteHeader(status)
			if status == http.StatusOK {
				_ = json.NewEncoder(w).Encode(map[string]string{"access_token": token})
			}
		case orderCreatePath:
			s.orders++
			s.tokens = append(s.tokens, r.Header.Get("Authorization"))
			status, body := s.orderFn(s.orders)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestClient(srv *supplyServer) (*Client, *[]time.Duration) {
	cache := NewTokenCache(srv.URL, "998901234567", "secret", time.Hour)
	client := NewClient(srv.URL, cache, 2*time.Second, zerolog.Nop())

	var delays []time.Duration
	client.sleep = func(d time.Duration) { delays = append(delays, d) }
	return client, &delays
}

func testPayload() OrderPayload {
	return OrderPayload{
		BranchID:      "GLOBAL",
		OrderNumber:   "A-100",
		CustomerTIN:   "123456789",
		OrderDate:     "2024-05-01",
		CreateStockIn: true,
		Contract:      OrderContract{Number: "C-1", Date: "2024-01-01"},
		Products: []OrderProduct{{
			Code:      "P1",
			Serial:    "P1",
			Name:      "Bolt",
			Count:     decimal.NewFromInt(2),
			Summa:     decimal.NewFromInt(100),
			BaseSumma: decimal.NewFromInt(100),
		}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Send
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_Send_SucceedsFirstAttempt(t *testing.T) {
	srv := newSupplyServer(t)
	client, delays := newTestClient(srv)

	ok, out := client.Send(context.Background(), testPayload(), 3)

	require.True(t, ok)
	assert.True(t, out.Success)
	assert.Equal(t, ClassNone, out.Class)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, `{"id":"ord-1"}`, out.Body)
	assert.Equal(t, 1, out.Attempts)
	assert.Empty(t, *delays, "no backoff on a clean success")
}

// A 401 triggers one token refresh and an immediate retry. The retry consumes
// an attempt slot but no backoff sleep.
func TestClient_Send_RefreshesTokenOn401(t *testing.T) {
	srv := newSupplyServer(t)
	srv.orderFn = func(call int) (int, string) {
		if call == 1 {
			return http.StatusUnauthorized, `{"error":"expired"}`
		}
		return http.StatusOK, `{"id":"ord-2"}`
	}
	client, delays := newTestClient(srv)

	ok, out := client.Send(context.Background(), testPayload(), 3)

	require.True(t, ok)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 2, srv.logins, "401 must force a second credential exchange")
	assert.Empty(t, *delays)
	require.Len(t, srv.tokens, 2)
	assert.NotEqual(t, srv.tokens[0], srv.tokens[1], "retry must carry the refreshed token")
}

// Persistent API errors exhaust the retry budget with linear backoff and the
// final Outcome reports the last status.
func TestClient_Send_ExhaustsRetriesOnAPIError(t *testing.T) {
	srv := newSupplyServer(t)
	srv.orderFn = func(int) (int, string) {
		return http.StatusInternalServerError, `{"error":"boom"}`
	}
	client, delays := newTestClient(srv)

	ok, out := client.Send(context.Background(), testPayload(), 3)

	require.False(t, ok)
	assert.False(t, out.Success)
	assert.Equal(t, ClassAPI, out.Class)
	assert.Equal(t, http.StatusInternalServerError, out.StatusCode)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, srv.orders)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *delays)
}

func TestClient_Send_TransportErrorIsRetriedThenReported(t *testing.T) {
	srv := newSupplyServer(t)
	cache := NewTokenCache(srv.URL, "998901234567", "secret", time.Hour)

	// Token exchange works, the order endpoint does not exist.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	client := NewClient(dead.URL, cache, time.Second, zerolog.Nop())
	var delays []time.Duration
	client.sleep = func(d time.Duration) { delays = append(delays, d) }

	ok, out := client.Send(context.Background(), testPayload(), 2)

	require.False(t, ok)
	assert.Equal(t, ClassTransport, out.Class)
	assert.Equal(t, 0, out.StatusCode)
	assert.Equal(t, 2, out.Attempts)
	assert.NotEmpty(t, out.Error)
	assert.Len(t, delays, 1)
}

func TestClient_Send_AuthFailureIsTerminal(t *testing.T) {
	srv := newSupplyServer(t)
	cache := NewTokenCache(srv.URL, "998901234567", "wrong", time.Hour)

	// Make every login fail.
	badLogin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(badLogin.Close)
	cache.client.SetBaseURL(badLogin.URL)

	client := NewClient(srv.URL, cache, time.Second, zerolog.Nop())
	client.sleep = func(time.Duration) {}

	ok, out := client.Send(context.Background(), testPayload(), 2)

	require.False(t, ok)
	assert.Equal(t, ClassAuth, out.Class)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 0, srv.orders, "no order POST without a token")
}

// When the token refresh triggered by a 401 fails, the recorded outcome must
// describe the refresh failure, not carry the previous attempt's response.
func TestClient_Send_AuthFailureClearsStaleResponse(t *testing.T) {
	srv := newSupplyServer(t)
	srv.orderFn = func(int) (int, string) {
		return http.StatusUnauthorized, `{"error":"expired"}`
	}
	srv.loginFn = func(call int) (int, string) {
		if call == 1 {
			return http.StatusOK, "tok-1"
		}
		return http.StatusInternalServerError, ""
	}
	client, _ := newTestClient(srv)

	ok, out := client.Send(context.Background(), testPayload(), 2)

	require.False(t, ok)
	assert.Equal(t, ClassAuth, out.Class)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 0, out.StatusCode, "401 from the first attempt must not survive")
	assert.Empty(t, out.Body)
	assert.Contains(t, out.Error, "auth failed")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lookups
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_Branches(t *testing.T) {
	cacheSrv := newSupplyServer(t)
	cache := NewTokenCache(cacheSrv.URL, "998901234567", "secret", time.Hour)

	lookupSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, branchesLookupPath, r.URL.Path)
		require.NotEmpty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Main"}]`))
	}))
	t.Cleanup(lookupSrv.Close)

	client := NewClient(lookupSrv.URL, cache, time.Second, zerolog.Nop())

	branches, err := client.Branches(context.Background())
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, int64(1), branches[0].ID)
	assert.Equal(t, "Main", branches[0].Name)
}

func TestClient_Warehouses_LookupError(t *testing.T) {
	cacheSrv := newSupplyServer(t)
	cache := NewTokenCache(cacheSrv.URL, "998901234567", "secret", time.Hour)

	lookupSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(lookupSrv.Close)

	client := NewClient(lookupSrv.URL, cache, time.Second, zerolog.Nop())

	_, err := client.Warehouses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
