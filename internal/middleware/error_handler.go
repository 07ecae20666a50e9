package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/errs"
)

// ErrorHandler is the echo HTTPErrorHandler.  Every failure leaves the
// server as an errs.Response; 5xx causes are logged, never returned.
func ErrorHandler(err error, c echo.Context) {
	status, body := render(err)
	l := GetLogger(c)
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Int("status", status).Str("code", string(body.Code)).Msg("request failed")
	} else {
		l.Debug().Err(err).Int("status", status).Str("code", string(body.Code)).Msg("request rejected")
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

// render maps err to a status and body.  echo's own errors (unknown
// route, bad method, oversized body) keep their status.
func render(err error) (int, errs.Response) {
	var e *errs.Error
	var he *echo.HTTPError
	if !errors.As(err, &e) && errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		if he.Code == http.StatusNotFound {
			msg = "Route not found"
		}
		return he.Code, errs.Response{Code: errs.Kind(errs.Code(http.StatusText(he.Code))), Message: msg}
	}
	return errs.ToResponse(err)
}
