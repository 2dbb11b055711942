package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/orgtask-api/internal/constants"
	"github.com/yukikurage/orgtask-api/internal/middleware"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/services"
	"github.com/yukikurage/orgtask-api/internal/testutil"
)

// newAPI mounts every route over a fresh database holding an ADMIN root
// (admin@example.com) and a TO below it (to@example.com).
func newAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)

	hierarchy := services.NewHierarchyService(repos.Users, repos.Teams)
	root, err := hierarchy.CreateUser(context.Background(), services.CreateUserInput{
		Name: "Admin", Email: "admin@example.com", Password: "password123",
		Roles: []models.Role{models.RoleAdmin},
	})
	require.NoError(t, err)
	_, err = hierarchy.CreateUser(context.Background(), services.CreateUserInput{
		Name: "Owner", Email: "to@example.com", Password: "password123",
		Roles: []models.Role{models.RoleTO}, ParentID: &root.ID,
	})
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r.Group("/api"), repos, &testutil.RecordingPusher{})
	return r
}

func call(r *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, email string) []*http.Cookie {
	t.Helper()
	w := call(r, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func TestRoutes_RequireSession(t *testing.T) {
	r := newAPI(t)

	for _, path := range []string{"/api/auth/me", "/api/tasks", "/api/users/tree", "/api/notifications", "/api/brands"} {
		w := call(r, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRoutes_AdminSession(t *testing.T) {
	r := newAPI(t)
	cookies := login(t, r, "admin@example.com")

	w := call(r, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@example.com", decode(t, w)["user"].(map[string]interface{})["email"])

	w = call(r, http.MethodGet, "/api/analytics?filter=AllTime", nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodPost, "/api/brands", map[string]interface{}{"name": "Acme"}, cookies)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodGet, "/api/brands", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["brands"], 1)

	w = call(r, http.MethodGet, "/api/users/tree", nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "tree")
}

func TestRoutes_BrandsAndLookups(t *testing.T) {
	r := newAPI(t)
	cookies := login(t, r, "admin@example.com")

	w := call(r, http.MethodPost, "/api/brands", map[string]interface{}{"name": "Acme"}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodPatch, "/api/brands/1", map[string]interface{}{"revenue": 250.5}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 250.5, decode(t, w)["brand"].(map[string]interface{})["revenue"])

	w = call(r, http.MethodGet, "/api/brands/1", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Empty(t, body["contacts"])
	assert.Empty(t, body["owners"])

	w = call(r, http.MethodDelete, "/api/brands/1", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(r, http.MethodGet, "/api/brands/1", nil, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodGet, "/api/users/search?email=TO@example.com", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "to@example.com", decode(t, w)["user"].(map[string]interface{})["email"])
	w = call(r, http.MethodGet, "/api/users/search?email=nobody@example.com", nil, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodGet, "/api/users/to", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["users"], 1)

	w = call(r, http.MethodGet, "/api/users/2/to-hierarchy", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["users"])

	for _, path := range []string{"/api/tasks/assignees", "/api/tasks/creators"} {
		w = call(r, http.MethodGet, path, nil, cookies)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, decode(t, w)["users"], path)
	}
}

func TestRoutes_RoleGuards(t *testing.T) {
	r := newAPI(t)
	cookies := login(t, r, "to@example.com")

	tests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/analytics", nil},
		{http.MethodPost, "/api/brands", map[string]interface{}{"name": "Acme"}},
		{http.MethodPost, "/api/users", map[string]interface{}{"email": "x@example.com"}},
		{http.MethodDelete, "/api/users/1", nil},
		{http.MethodPatch, "/api/brands/1", map[string]interface{}{"name": "Acme"}},
		{http.MethodDelete, "/api/brands/1", nil},
	}
	for _, tt := range tests {
		w := call(r, tt.method, tt.path, tt.body, cookies)
		assert.Equal(t, http.StatusForbidden, w.Code, tt.path)
	}

	// TO holders may list their team tasks
	w := call(r, http.MethodGet, "/api/tasks?type=TeamTasks", nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_Logout(t *testing.T) {
	r := newAPI(t)
	cookies := login(t, r, "admin@example.com")

	w := call(r, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/api/auth/me", nil, w.Result().Cookies())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
