package relay

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/infinitybotlist/lanyard/dovewing/dovetypes"
	"github.com/infinitybotlist/lanyard/hotcache"
	"github.com/infinitybotlist/lanyard/lanyard"
	"github.com/infinitybotlist/lanyard/uapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	monitoredID   = "94490510688792576"
	unmonitoredID = "123456789012345678"
)

const presenceBody = `{"success":true,"data":{"spotify":null,"kv":{},"listening_to_spotify":false,"discord_user":{"username":"phineas","public_flags":0,"id":"94490510688792576","display_name":null,"global_name":"Phineas","discriminator":"0","bot":false,"avatar":null},"discord_status":"online","activities":[],"active_on_discord_web":false,"active_on_discord_desktop":true,"active_on_discord_mobile":false,"active_on_discord_embedded":false}}`

type memoryCache struct {
	mu     sync.Mutex
	values map[string]int
}

func (m *memoryCache) Get(ctx context.Context, key string) (*int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]

	if !ok {
		return nil, hotcache.ErrHotCacheDataNotFound
	}

	return &v, nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value *int, expiry time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = *value
	return nil
}

func (m *memoryCache) Increment(ctx context.Context, key string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] += int(value)
	return nil
}

func (m *memoryCache) IncrementOne(ctx context.Context, key string) error {
	return m.Increment(ctx, key, 1)
}

func (m *memoryCache) IncrementWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key]++
	return int64(m.values[key]), 30 * time.Second, nil
}

func (m *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.values[key]
	return ok, nil
}

func (m *memoryCache) Expiry(ctx context.Context, key string) (time.Duration, error) {
	return 30 * time.Second, nil
}

func newUpstream(t *testing.T) *lanyard.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/users/" + monitoredID:
			w.Write([]byte(presenceBody))
		case "/v1/users/" + unmonitoredID:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"error":{"message":"User is not being monitored by Lanyard","code":"user_not_monitored"}}`))
		default:
			w.Write([]byte(`{"success":false,"error":{"message":"weird","code":"weird"}}`))
		}
	}))

	t.Cleanup(srv.Close)

	return &lanyard.Client{HTTP: srv.Client(), BaseURL: srv.URL + "/v1"}
}

func doRequest(t *testing.T, h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request

	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestGetUser(t *testing.T) {
	h := New(Options{Client: newUpstream(t)})

	rec := doRequest(t, h, http.MethodGet, "/users/"+monitoredID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp lanyard.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, lanyard.StatusOnline, resp.Data.DiscordStatus)
	assert.Equal(t, "phineas", resp.Data.DiscordUser.Username)
	assert.Empty(t, resp.Data.Activities)
}

func TestGetUserUpstreamError(t *testing.T) {
	h := New(Options{Client: newUpstream(t)})

	rec := doRequest(t, h, http.MethodGet, "/users/"+unmonitoredID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp lanyard.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, lanyard.CodeUserNotMonitored, resp.Error.Code)

	// Lanyard answering 200 with an error envelope is still an error
	rec = doRequest(t, h, http.MethodGet, "/users/1", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"weird"`)
}

type failingFetcher struct{}

func (failingFetcher) FetchUser(ctx context.Context, id lanyard.Snowflake) (*lanyard.Presence, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestGetUserUpstreamUnavailable(t *testing.T) {
	h := New(Options{Client: failingFetcher{}})

	rec := doRequest(t, h, http.MethodGet, "/users/"+monitoredID, "")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp uapi.ApiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, CodeUpstreamUnavailable, resp.Error.Code)
}

type nilFetcher struct{}

func (nilFetcher) FetchUser(ctx context.Context, id lanyard.Snowflake) (*lanyard.Presence, error) {
	return nil, nil
}

func TestGetUserNullData(t *testing.T) {
	h := New(Options{Client: nilFetcher{}})

	rec := doRequest(t, h, http.MethodGet, "/users/"+monitoredID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":null}`, rec.Body.String())
}

func TestGetPlatformUser(t *testing.T) {
	h := New(Options{Client: newUpstream(t)})

	rec := doRequest(t, h, http.MethodGet, "/users/"+monitoredID+"/platform", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var u dovetypes.PlatformUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, monitoredID, u.ID)
	assert.Equal(t, "Phineas", u.DisplayName)
	assert.Equal(t, dovetypes.PlatformStatusOnline, u.Status)
	assert.Equal(t, []string{"desktop"}, u.Platforms)

	rec = doRequest(t, h, http.MethodGet, "/users/abc/platform", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), lanyard.CodeInvalidSnowflake)

	rec = doRequest(t, h, http.MethodGet, "/users/"+unmonitoredID+"/platform", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUsers(t *testing.T) {
	h := New(Options{Client: newUpstream(t)})

	rec := doRequest(t, h, http.MethodPost, "/users", `{"ids":["`+monitoredID+`","`+unmonitoredID+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Contains(t, resp.Data, monitoredID)
	assert.Equal(t, "phineas", resp.Data[monitoredID].DiscordUser.Username)
	require.Contains(t, resp.Errors, unmonitoredID)
	assert.Equal(t, lanyard.CodeUserNotMonitored, resp.Errors[unmonitoredID].Code)
}

func TestGetUsersValidation(t *testing.T) {
	h := New(Options{Client: newUpstream(t)})

	rec := doRequest(t, h, http.MethodPost, "/users", `{"ids":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp uapi.ApiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "Between 1 and 25")

	rec = doRequest(t, h, http.MethodPost, "/users", `{"ids":["nope"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error.Message, "Each ID must be a snowflake")

	rec = doRequest(t, h, http.MethodPost, "/users", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/users", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := New(Options{
		Client:            newUpstream(t),
		RateLimitCache:    &memoryCache{values: map[string]int{}},
		RateLimitRequests: 2,
		RateLimitWindow:   30 * time.Second,
	})

	for i := 0; i < 2; i++ {
		rec := doRequest(t, h, http.MethodGet, "/users/"+monitoredID, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, h, http.MethodGet, "/users/"+monitoredID, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "ratelimited")

	// Buckets are per route
	rec = doRequest(t, h, http.MethodGet, "/users/"+monitoredID+"/platform", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitKeysOnClientIP(t *testing.T) {
	h := New(Options{
		Client:            newUpstream(t),
		RateLimitCache:    &memoryCache{values: map[string]int{}},
		RateLimitRequests: 1,
		RateLimitWindow:   30 * time.Second,
	})

	get := func(remoteAddr, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/users/"+monitoredID, nil)
		req.RemoteAddr = remoteAddr

		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("203.0.113.7:40001", ""))
	assert.Equal(t, http.StatusTooManyRequests, get("203.0.113.7:40002", ""))
	assert.Equal(t, http.StatusTooManyRequests, get("203.0.113.7:40003", ""))

	// Behind a proxy the forwarded client is limited, not the proxy
	assert.Equal(t, http.StatusOK, get("10.0.0.1:50000", "198.51.100.4"))
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.1:50001", "198.51.100.4"))
	assert.Equal(t, http.StatusOK, get("10.0.0.1:50002", "198.51.100.5"))
}

func TestOpenAPI(t *testing.T) {
	h := New(Options{Client: newUpstream(t)})

	rec := doRequest(t, h, http.MethodGet, "/openapi", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.Bytes()
	assert.True(t, bytes.Contains(body, []byte(`"/users/{id}"`)))
	assert.True(t, bytes.Contains(body, []byte(`"getPlatformUser"`)))
	assert.True(t, bytes.Contains(body, []byte(`"getUsers"`)))
}

func TestNotFound(t *testing.T) {
	h := New(Options{Client: newUpstream(t)})

	rec := doRequest(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, uapi.NotFoundPage, rec.Body.String())
}
