package http

import (
	"encoding/json"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"

	"github.com/devconfhq/mailroom"
)

type appHandler func(w http.ResponseWriter, r *http.Request) error

// Error turns an appHandler into an http.HandlerFunc, translating taxonomy
// codes into HTTP statuses. Internal details are logged and reported, never
// echoed to the client.
func (s *Server) Error(fn appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		hlog.FromRequest(r).Error().Msg(err.Error())

		code := mailroom.ErrorCode(err)
		if code == mailroom.ErrInternal || code == mailroom.ErrUnavailable {
			sentry.CaptureException(err)
		}

		writeJSONResponse(w, statusFromCode(code), &mailroom.SubscriptionResponse{
			Success: false,
			Message: mailroom.ErrorMessage(err),
		})
	}
}

func statusFromCode(code string) int {
	switch code {
	case mailroom.ErrInvalid, mailroom.ErrExpired:
		return http.StatusBadRequest
	case mailroom.ErrUnauthorized:
		return http.StatusUnauthorized
	case mailroom.ErrForbidden:
		return http.StatusForbidden
	case mailroom.ErrNotFound:
		return http.StatusNotFound
	case mailroom.ErrConflict:
		return http.StatusConflict
	case mailroom.ErrUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(response)
}
