package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/orgtask-api/internal/constants"
	"github.com/yukikurage/orgtask-api/internal/models"
)

// createAuthContext builds a handler context as RequireAuth would leave it
// for user. A nil user leaves the context unauthenticated.
func createAuthContext(method, url string, body interface{}, user *models.User, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	if user != nil {
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyRoles, []models.Role(user.Roles))
	}
	return c, w
}

func idParam(name string, id uint64) gin.Param {
	return gin.Param{Key: name, Value: strconv.FormatUint(id, 10)}
}

// decode unmarshals a response envelope
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
