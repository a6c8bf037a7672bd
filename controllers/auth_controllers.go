package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-queue/middlewares"
	"github.com/yeremiapane/cafe-queue/services"
	"github.com/yeremiapane/cafe-queue/utils"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

// SignInAnonymously -> session untuk customer tanpa akun
func (ac *AuthController) SignInAnonymously(c *gin.Context) {
	sess, err := ac.Auth.SignInAnonymously(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Signed in anonymously", sess)
}

// SignIn -> barista login, returns a session token
func (ac *AuthController) SignIn(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badBody(c, err)
		return
	}

	sess, err := ac.Auth.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", sess)
}

func (ac *AuthController) SignOut(c *gin.Context) {
	if err := ac.Auth.SignOut(c.Request.Context(), middlewares.GetSession(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Signed out", nil)
}

func (ac *AuthController) GetSession(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Current session", middlewares.GetSession(c))
}
