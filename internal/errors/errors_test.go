package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	notFound := NotFound("Task not found.")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", BadRequest("Users not found: %s", "9"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no"), http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"not found", notFound, http.StatusNotFound},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"wrapped", fmt.Errorf("lookup: %w", notFound), http.StatusNotFound},
		{"unexpected", fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestBadRequest_FormatsOnlyWithArgs(t *testing.T) {
	assert.Equal(t, "Users not found: 3, 4", BadRequest("Users not found: %s", "3, 4").Error())
	assert.Equal(t, "100% done", BadRequest("100% done").Error())
}

func serve(handler gin.HandlerFunc) (int, map[string]interface{}) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func TestHandleError(t *testing.T) {
	code, body := serve(func(c *gin.Context) {
		HandleError(c, fmt.Errorf("wrapped: %w", Conflict("All contributed users already exist for this task.")))
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, float64(http.StatusConflict), body["status"])
	assert.Equal(t, ErrCodeConflict, body["code"])
	assert.Equal(t, "All contributed users already exist for this task.", body["message"])

	code, body = serve(func(c *gin.Context) {
		HandleError(c, fmt.Errorf("failed to save task: %w", fmt.Errorf("dial tcp: refused")))
	})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, ErrCodeInternalError, body["code"])
	assert.NotContains(t, body["message"], "dial tcp")
}

func TestRespond_MergesPayload(t *testing.T) {
	code, body := serve(func(c *gin.Context) {
		Respond(c, http.StatusCreated, "Task created successfully", gin.H{"task": gin.H{"id": 1}})
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, float64(http.StatusCreated), body["status"])
	assert.Equal(t, "Task created successfully", body["message"])
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, body["task"])
}
