package http

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/devconfhq/mailroom"
)

func (s *Server) subscribeHandler(w http.ResponseWriter, r *http.Request) error {
	var req *mailroom.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req == nil {
		return &mailroom.Error{Code: mailroom.ErrInvalid, Message: "Invalid request body.", Err: err}
	}

	req.IPAddress = remoteIP(r)
	req.UserAgent = r.UserAgent()

	result, err := s.SubscriptionService.Subscribe(req)
	if err != nil {
		return err
	}

	hlog.FromRequest(r).Info().
		Str("email", req.Email).
		Bool("already_subscribed", result.AlreadySubscribed).
		Msg("subscribe request handled")

	writeJSONResponse(w, http.StatusOK, &mailroom.SubscriptionResponse{
		Success:           !result.AlreadySubscribed,
		Message:           result.Message,
		AlreadySubscribed: result.AlreadySubscribed,
	})

	return nil
}

func (s *Server) resendConfirmationHandler(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &mailroom.Error{Code: mailroom.ErrInvalid, Message: "Invalid request body.", Err: err}
	}

	result, err := s.SubscriptionService.ResendConfirmation(req.Email)
	if err != nil {
		return err
	}

	writeJSONResponse(w, http.StatusOK, &mailroom.SubscriptionResponse{
		Success:          true,
		Message:          result.Message,
		AlreadyConfirmed: result.AlreadyConfirmed,
	})

	return nil
}

// confirmHandler is browser-navigated from the confirmation email, so it
// answers with redirects to landing pages instead of JSON.
func (s *Server) confirmHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	email := query.Get("email")
	token := query.Get("token")

	_, err := s.SubscriptionService.Confirm(email, token)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("confirmation failed")

		reason := "invalid"
		if mailroom.ErrorCode(err) == mailroom.ErrExpired {
			reason = "expired"
		}
		http.Redirect(w, r, fmt.Sprintf("%s/newsletter/confirm-error?reason=%s", s.BaseURL, reason), http.StatusFound)
		return
	}

	http.Redirect(w, r, s.BaseURL+"/newsletter/confirmed", http.StatusFound)
}

// remoteIP returns the best-effort client address: the first hop of
// X-Forwarded-For when present, the peer address otherwise.
func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
