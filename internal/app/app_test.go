package app_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskManager/internal/app"
	"taskManager/internal/config"
	"taskManager/internal/files"
	"taskManager/internal/identity"
	"taskManager/internal/repository/task/inmemory"
	userinmemory "taskManager/internal/repository/user/inmemory"
	"taskManager/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"*"}

	storage, err := files.NewStorage(afero.NewMemMapFs(), "img", 1024)
	require.NoError(t, err)

	router := app.NewRouter(cfg,
		service.NewTaskService(inmemory.NewTaskStorage()),
		service.NewUserService(userinmemory.NewUserStorage()),
		storage)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
	}).SignedString([]byte("any"))
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRouter_AuthBoundary(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/tasks")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_CreateThenList(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/tasks", strings.NewReader(`{"title":"Plan sprint"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "u1"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for sub, want := range map[string]int{"u1": 1, "u2": 0} {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/tasks", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", bearer(t, sub))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)

		var list []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, list, want, sub)
	}
}
