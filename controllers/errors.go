package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/cafe-queue/services"
	"github.com/yeremiapane/cafe-queue/utils"
)

// statusFor maps service error kinds onto HTTP statuses.
func statusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindAuthorization:
		var e *services.Error
		if errors.As(err, &e) {
			switch e.Detail["reason"] {
			case "barista_required", "not_order_owner":
				return http.StatusForbidden
			}
		}
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.WithField("path", c.FullPath()).Error(err)
	}
	utils.RespondError(c, code, err)
}

func badRequest(c *gin.Context, op string, detail map[string]any) {
	utils.RespondError(c, http.StatusBadRequest, &services.Error{
		Kind:   services.KindValidation,
		Op:     op,
		Detail: detail,
	})
}

// badBody answers 400 for a request body that failed to bind. The decoder's
// text is never echoed; only the offending field is reported when known.
func badBody(c *gin.Context, err error) {
	detail := map[string]any{"reason": "malformed_body"}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		detail["field"] = typeErr.Field
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		detail["field"] = strings.ToLower(fieldErrs[0].Field())
		detail["reason"] = fieldErrs[0].Tag()
	}
	badRequest(c, c.FullPath(), detail)
}

// parseID reads a positive numeric path parameter, answering 400 otherwise.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, c.FullPath(), map[string]any{"field": param, "reason": "invalid_id"})
		return 0, false
	}
	return uint(id), true
}
