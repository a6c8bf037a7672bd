package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Kind   string         `json:"kind"`
	Detail map[string]any `json:"detail,omitempty"`
}

// KindedError is satisfied by errors that carry a machine-readable kind.
type KindedError interface {
	error
	ErrorKind() string
	ErrorDetail() map[string]any
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError writes the error envelope. Kinded errors expose only their
// kind and detail; server errors without a kind are not echoed back.
func RespondError(c *gin.Context, code int, err error) {
	var kinded KindedError
	if errors.As(err, &kinded) {
		c.JSON(code, JSONResponse{
			Status:  false,
			Message: kinded.ErrorKind(),
			Error:   &ErrorBody{Kind: kinded.ErrorKind(), Detail: kinded.ErrorDetail()},
		})
		return
	}

	message := err.Error()
	if code >= http.StatusInternalServerError {
		message = http.StatusText(code)
	}
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: message,
	})
}
