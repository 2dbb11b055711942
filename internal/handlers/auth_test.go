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
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/services"
	"github.com/yukikurage/orgtask-api/internal/testutil"
)

type authTestEnv struct {
	handler *AuthHandler
	user    *models.User
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	repos := repository.NewRepositories(db)

	user, err := services.NewHierarchyService(repos.Users, repos.Teams).CreateUser(context.Background(), services.CreateUserInput{
		Name:     "Root",
		Email:    "root@example.com",
		Password: "supersecret",
		Roles:    []models.Role{models.RoleAdmin},
	})
	require.NoError(t, err)

	return authTestEnv{
		handler: NewAuthHandler(services.NewAuthService(repos.Users)),
		user:    user,
	}
}

func postLogin(t *testing.T, env authTestEnv, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/login", env.handler.Login)

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postLogin(t, env, map[string]string{"email": "root@example.com", "password": "supersecret"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(http.StatusOK), body["status"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "root@example.com", user["email"])
	assert.NotContains(t, w.Body.String(), "password")

	require.NotEmpty(t, w.Result().Cookies(), "expected session cookie to be set")
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postLogin(t, env, map[string]string{"email": "root@example.com", "password": "nottheone"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email or password.", decode(t, w)["message"])

	w = postLogin(t, env, map[string]string{"email": "root@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode(t, w)["message"])
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	c, w := createAuthContext(http.MethodGet, "/api/auth/me", nil, env.user)
	env.handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "Root", user["name"])
	assert.Equal(t, []interface{}{"ADMIN"}, user["roles"])

	c, w = createAuthContext(http.MethodGet, "/api/auth/me", nil, nil)
	env.handler.GetCurrentUser(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
