package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-queue/models"
	"github.com/yeremiapane/cafe-queue/services"
	"github.com/yeremiapane/cafe-queue/utils"
)

const sessionKey = "session"

var errMissingToken = errors.New("authorization token missing")

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// AuthMiddleware requires a valid session, anonymous or barista. The token
// comes from the Authorization header, or the token query parameter for
// websocket upgrades where browsers cannot set headers.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, &services.Error{
				Kind:   services.KindAuthorization,
				Op:     c.FullPath(),
				Detail: map[string]any{"reason": "missing_token"},
				Err:    errMissingToken,
			})
			c.Abort()
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			code := http.StatusUnauthorized
			if services.IsKind(err, services.KindPersistence) {
				code = http.StatusInternalServerError
			}
			utils.RespondError(c, code, err)
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RequireBarista must run after AuthMiddleware.
func RequireBarista() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.IsBaristaUser(GetSession(c)) {
			utils.RespondError(c, http.StatusForbidden, &services.Error{
				Kind:   services.KindAuthorization,
				Op:     c.FullPath(),
				Detail: map[string]any{"reason": "barista_required"},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession returns the session set by AuthMiddleware, or nil.
func GetSession(c *gin.Context) *models.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*models.Session)
	return sess
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}
