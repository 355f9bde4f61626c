package http

import (
	"encoding/json"
	"net/http"

	"github.com/devconfhq/mailroom"
)

func (s *Server) unsubscribeByTokenHandler(w http.ResponseWriter, r *http.Request) error {
	token := r.URL.Query().Get("token")

	result, err := s.SubscriptionService.UnsubscribeByToken(token)
	if err != nil {
		return err
	}

	writeJSONResponse(w, http.StatusOK, &mailroom.SubscriptionResponse{
		Success:             true,
		Message:             result.Message,
		AlreadyUnsubscribed: result.AlreadyUnsubscribed,
	})

	return nil
}

func (s *Server) unsubscribeByEmailHandler(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &mailroom.Error{Code: mailroom.ErrInvalid, Message: "Invalid request body.", Err: err}
	}

	result, err := s.SubscriptionService.UnsubscribeByEmail(req.Email)
	if err != nil {
		return err
	}

	writeJSONResponse(w, http.StatusOK, &mailroom.SubscriptionResponse{
		Success:             true,
		Message:             result.Message,
		AlreadyUnsubscribed: result.AlreadyUnsubscribed,
	})

	return nil
}
