package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/deskhive/go-sdk/transport"
)

// fakeSession simulates the session's token view. Refresh success swaps the
// current token for the refreshed one, like the real commit path does.
type fakeSession struct {
	mu                  sync.Mutex
	authenticated       bool
	tokenValue          string
	expiring            bool
	refreshedToken      string
	refreshErr          error
	refreshCalls        int
	refreshSessionCalls int
}

func (f *fakeSession) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeSession) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenValue
}

func (f *fakeSession) IsTokenExpiring() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiring
}

func (f *fakeSession) RefreshSession(ctx context.Context) bool {
	f.mu.Lock()
	f.refreshSessionCalls++
	f.mu.Unlock()
	_, err := f.Refresh(ctx)
	return err == nil
}

func (f *fakeSession) Refresh(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		f.authenticated = false
		f.tokenValue = ""
		return "", f.refreshErr
	}
	f.tokenValue = f.refreshedToken
	f.expiring = false
	return f.refreshedToken, nil
}

func TestAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sess := &fakeSession{authenticated: true, tokenValue: "tok-1"}
	client := transport.NewClient(server.URL, 5*time.Second, sess)

	resp, err := client.R().Get("/tickets")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Equal(t, "Bearer tok-1", gotAuth)
	require.NotEmpty(t, gotRequestID)
}

func TestNoBearerWhenNoToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sess := &fakeSession{}
	client := transport.NewClient(server.URL, 5*time.Second, sess)

	_, err := client.R().Get("/public")
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestProactiveRefreshBeforeExpiringRequest(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sess := &fakeSession{
		authenticated:  true,
		tokenValue:     "tok-stale",
		expiring:       true,
		refreshedToken: "tok-fresh",
	}
	client := transport.NewClient(server.URL, 5*time.Second, sess)

	_, err := client.R().Get("/tickets")
	require.NoError(t, err)
	require.Equal(t, 1, sess.refreshSessionCalls)
	require.Equal(t, "Bearer tok-fresh", gotAuth)
}

func TestProactiveRefreshFailureStillSendsRequest(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sess := &fakeSession{
		authenticated: true,
		tokenValue:    "tok-stale",
		expiring:      true,
		refreshErr:    errors.New("refresh backend down"),
	}
	client := transport.NewClient(server.URL, 5*time.Second, sess)

	// Header attachment fails open; the server decides.
	resp, err := client.R().Get("/tickets")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Equal(t, 1, hits)
}

func TestUnauthorizedRefreshesAndReplaysOnce(t *testing.T) {
	var mu sync.Mutex
	var seenAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seenAuth = append(seenAuth, r.Header.Get("Authorization"))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	sess := &fakeSession{authenticated: true, tokenValue: "tok-old", refreshedToken: "tok-new"}
	client := transport.NewClient(server.URL, 5*time.Second, sess)

	resp, err := client.R().Get("/tickets")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Equal(t, 1, sess.refreshCalls)
	require.Equal(t, []string{"Bearer tok-old", "Bearer tok-new"}, seenAuth)
}

func TestUnauthorizedReplaysRequestBody(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(payload))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sess := &fakeSession{authenticated: true, tokenValue: "tok-old", refreshedToken: "tok-new"}
	client := transport.NewClient(server.URL, 5*time.Second, sess)

	resp, err := client.R().
		SetBody(map[string]string{"title": "VPN not connecting"}).
		Post("/tickets")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	require.Len(t, bodies, 2)
	require.Equal(t, bodies[0], bodies[1])
	require.Contains(t, bodies[1], "VPN not connecting")
}

func TestUnauthorizedRetriedAtMostOnce(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sess := &fakeSession{authenticated: true, tokenValue: "tok-old", refreshedToken: "tok-new"}
	client := transport.NewClient(server.URL, 5*time.Second, sess)

	resp, err := client.R().Get("/tickets")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	require.Equal(t, 2, hits)
	require.Equal(t, 1, sess.refreshCalls)
}

func TestUnauthorizedRefreshFailureSurfacesErrorAndSignalsLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	refreshErr := errors.New("refresh token revoked")
	var loginSignals int
	sess := &fakeSession{authenticated: true, tokenValue: "tok-old", refreshErr: refreshErr}
	client := transport.NewClient(server.URL, 5*time.Second, sess,
		transport.WithOnAuthExpired(func() { loginSignals++ }))

	_, err := client.R().Get("/tickets")
	require.Error(t, err)
	require.ErrorIs(t, err, refreshErr)
	require.Equal(t, 1, loginSignals)
	require.False(t, sess.IsAuthenticated())
}

func TestForbiddenAndServerErrorsAreNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(status)
		}))

		sess := &fakeSession{authenticated: true, tokenValue: "tok-1", refreshedToken: "tok-2"}
		client := transport.NewClient(server.URL, 5*time.Second, sess)

		resp, err := client.R().Get("/tickets")
		require.NoError(t, err)
		require.Equal(t, status, resp.StatusCode())
		require.Equal(t, 1, hits)
		require.Equal(t, 0, sess.refreshCalls)
		server.Close()
	}
}

func TestSkipAuthBypassesTokenHandling(t *testing.T) {
	var gotAuth, gotMarker string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMarker = r.Header.Get(transport.HeaderSkipAuth)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sess := &fakeSession{authenticated: true, tokenValue: "tok-1", expiring: true}
	client := transport.NewClient(server.URL, 5*time.Second, sess)

	_, err := client.R().SetHeader(transport.HeaderSkipAuth, "1").Get("/auth/login")
	require.NoError(t, err)
	require.Empty(t, gotAuth)
	require.Empty(t, gotMarker)
	require.Equal(t, 0, sess.refreshSessionCalls)
}
