package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "fashionec/internal/errors"
)

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError maps a domain error to its HTTP form. The full error is
// logged with the request id; the response carries only its class.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"method":     c.Request().Method,
		"path":       c.Path(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	})
	if httpErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: msg,
		Code:  "INVALID_REQUEST",
	})
}

// bindAndValidate binds the request into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return invalidRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return invalidRequest(err.Error())
	}
	return nil
}

// bindPatch decodes only the request body, so absent fields stay unset.
func bindPatch(c echo.Context, patch interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, patch); err != nil {
		return invalidRequest("invalid request body")
	}
	return nil
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, invalidRequest("invalid " + name)
	}
	return uint(id), nil
}
