package Controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cafe-queue/controllers"
	"github.com/yeremiapane/cafe-queue/middlewares"
)

func setupAuthRouter(env *testEnv) *gin.Engine {
	router := gin.New()
	authCtrl := controllers.NewAuthController(env.Auth)
	requireSession := middlewares.AuthMiddleware(env.Auth)

	router.POST("/auth/anonymous", authCtrl.SignInAnonymously)
	router.POST("/auth/login", authCtrl.SignIn)
	router.POST("/auth/logout", requireSession, authCtrl.SignOut)
	router.GET("/auth/session", requireSession, authCtrl.GetSession)
	return router
}

func TestAnonymousSession(t *testing.T) {
	env := setupTestEnv(t)
	router := setupAuthRouter(env)

	w := doRequest(t, router, http.MethodPost, "/auth/anonymous", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_anonymous"])
	token := data["token"].(string)

	w = doRequest(t, router, http.MethodGet, "/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, data["user_id"], decode(t, w)["data"].(map[string]interface{})["user_id"])

	w = doRequest(t, router, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBaristaLogin(t *testing.T) {
	env := setupTestEnv(t)
	router := setupAuthRouter(env)
	_, err := env.Auth.CreateBarista(context.Background(), "Bea", "bea@cafe.test", "s3cret-pass")
	require.NoError(t, err)

	w := doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    "bea@cafe.test",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["is_anonymous"])
	assert.NotEmpty(t, data["token"])

	w = doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    "bea@cafe.test",
		"password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decode(t, w)["error"].(map[string]interface{})["detail"].(map[string]interface{})["reason"])

	w = doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]interface{}{"email": "bea@cafe.test"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := decode(t, w)["error"].(map[string]interface{})["detail"].(map[string]interface{})
	assert.Equal(t, "password", detail["field"])
	assert.Equal(t, "required", detail["reason"])
}
