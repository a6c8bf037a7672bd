package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBlacklist()

	revoked, err := b.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "tok", time.Now().Add(time.Hour)))
	revoked, err = b.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, b.Revoke(ctx, "old", time.Now().Add(-time.Second)))
	b.Cleanup()
	revoked, err = b.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisBlacklist_Unreachable(t *testing.T) {
	b := NewRedisBlacklist(NewRedisClient("127.0.0.1:1"))
	_, err := b.IsRevoked(context.Background(), "tok")
	assert.Error(t, err)
}

func TestRevokedKey(t *testing.T) {
	assert.Equal(t, revokedKey("a"), revokedKey("a"))
	assert.NotEqual(t, revokedKey("a"), revokedKey("b"))
	assert.Len(t, revokedKey("a"), len(keyRevokedToken)+64)
}

type kindedErr struct{}

func (kindedErr) Error() string               { return "boom" }
func (kindedErr) ErrorKind() string           { return "validation_error" }
func (kindedErr) ErrorDetail() map[string]any { return map[string]any{"field": "x"} }

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, http.StatusBadRequest, kindedErr{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"validation_error","error":{"kind":"validation_error","detail":{"field":"x"}}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondError(c, http.StatusInternalServerError, assert.AnError)
	assert.JSONEq(t, `{"status":false,"message":"Internal Server Error"}`, w.Body.String())
}
