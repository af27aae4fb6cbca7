package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/acmeid/accounts-api/auth"
	"github.com/acmeid/accounts-api/internal/config"
	"github.com/acmeid/accounts-api/server"
	"github.com/acmeid/accounts-api/token"
	"github.com/acmeid/accounts-api/token/refresh"
	refreshrepofake "github.com/acmeid/accounts-api/token/refresh/repofake"
	"github.com/acmeid/accounts-api/users"
	userrepofake "github.com/acmeid/accounts-api/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail = "john.doe@example.com"
	testPassword  = "password123"
)

type testServer struct {
	http     *httptest.Server
	userRepo *userrepofake.FakeUserRepo
	userID   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Env:                  "TEST",
		JWTSecret:            "test-signing-secret",
		AccessTokenValidity:  15 * time.Minute,
		RefreshTokenValidity: 7 * 24 * time.Hour,
	}

	userRepo := userrepofake.NewFakeUserRepo()
	refreshRepo := refreshrepofake.NewFakeRefreshTokenRepo()
	codec := token.NewCodec([]byte(cfg.JWTSecret), cfg.AccessTokenValidity)
	manager := refresh.NewManager(refreshRepo, cfg.RefreshTokenValidity)

	service, err := auth.NewService(auth.Repos{Users: userRepo}, codec, manager)
	require.NoError(t, err)

	hash, err := users.HashPassword(testPassword)
	require.NoError(t, err)
	user := &users.User{Email: testUserEmail, Name: "John Doe", PasswordHash: hash}
	require.NoError(t, userRepo.Create(context.Background(), user))

	srv := httptest.NewServer(server.New(cfg, service, codec, zerolog.Nop()))
	t.Cleanup(srv.Close)

	return &testServer{http: srv, userRepo: userRepo, userID: user.ID}
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.http.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func (ts *testServer) get(t *testing.T, path, bearer string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.http.URL+path, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func (ts *testServer) login(t *testing.T) map[string]any {
	t.Helper()
	resp := ts.postJSON(t, server.RouteAuthLogin, map[string]string{
		"email":    testUserEmail,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody(t, resp)
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)

	body := ts.login(t)
	require.Equal(t, "Bearer", body["token_type"])
	require.Equal(t, float64(900), body["expires_in"])
	require.Greater(t, body["refresh_expires_in"], body["expires_in"])
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])

	userObj, ok := body["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, testUserEmail, userObj["email"])
	require.NotContains(t, userObj, "password")
	require.NotContains(t, userObj, "password_hash")
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	wrongPassword := ts.postJSON(t, server.RouteAuthLogin, map[string]string{
		"email":    testUserEmail,
		"password": "wrong-password",
	})
	unknownEmail := ts.postJSON(t, server.RouteAuthLogin, map[string]string{
		"email":    "nobody@example.com",
		"password": testPassword,
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	// Same error body for both causes.
	require.Equal(t, decodeBody(t, wrongPassword), decodeBody(t, unknownEmail))
}

func TestLoginEndpointRejectsMissingFields(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.postJSON(t, server.RouteAuthLogin, map[string]string{"email": testUserEmail})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRefreshEndpointRotates(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t)

	resp := ts.postJSON(t, server.RouteAuthRefresh, map[string]string{
		"refreshToken": login["refresh_token"].(string),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decodeBody(t, resp)
	require.NotEqual(t, login["refresh_token"], rotated["refresh_token"])

	// The consumed token is rejected on replay.
	replay := ts.postJSON(t, server.RouteAuthRefresh, map[string]string{
		"refreshToken": login["refresh_token"].(string),
	})
	require.Equal(t, http.StatusForbidden, replay.StatusCode)
	replay.Body.Close()
}

func TestRefreshEndpointRejectsUnknownToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.postJSON(t, server.RouteAuthRefresh, map[string]string{
		"refreshToken": "no-such-token",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestMeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t)

	resp := ts.get(t, server.RouteAuthMe, login["access_token"].(string))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decodeBody(t, resp)
	require.Equal(t, ts.userID, profile["id"])
	require.Equal(t, testUserEmail, profile["email"])
	require.NotContains(t, profile, "password")
	require.NotContains(t, profile, "password_hash")
}

func TestMeEndpointRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	noToken := ts.get(t, server.RouteAuthMe, "")
	require.Equal(t, http.StatusUnauthorized, noToken.StatusCode)
	noToken.Body.Close()

	badToken := ts.get(t, server.RouteAuthMe, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, badToken.StatusCode)
	badToken.Body.Close()
}

func TestMeEndpointDeletedUser(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t)

	ts.userRepo.Delete(ts.userID)

	resp := ts.get(t, server.RouteAuthMe, login["access_token"].(string))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.postJSON(t, server.RouteUserRegister, map[string]string{
		"email":    "jane.doe@example.com",
		"password": "another-password",
		"name":     "Jane Doe",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])

	userObj, ok := body["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "jane.doe@example.com", userObj["email"])
	require.NotContains(t, userObj, "password")
}

func TestRegisterEndpointConflict(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.postJSON(t, server.RouteUserRegister, map[string]string{
		"email":    testUserEmail,
		"password": "whatever-password",
		"name":     "Someone Else",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterEndpointValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.postJSON(t, server.RouteUserRegister, map[string]string{
		"email":    "not-an-email",
		"password": "short",
		"name":     "",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, server.RouteHealthz, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", decodeBody(t, resp)["status"])
}
