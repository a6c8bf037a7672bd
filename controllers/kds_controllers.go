package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/cafe-queue/kds"
	"github.com/yeremiapane/cafe-queue/middlewares"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts upgrades from allowedOrigin, or from any origin
// when it is "*" or empty. Requests without an Origin header are accepted.
func NewKDSController(hub *kds.Hub, allowedOrigin string) *KDSController {
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

// Handler -> endpoint WebSocket for barista screens, runs behind RequireBarista
func (kc *KDSController) Handler(c *gin.Context) {
	sess := middlewares.GetSession(c)

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	kc.Hub.RegisterClient(ws, sess.UserID)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	kc.Hub.UnregisterClient(ws)
}
