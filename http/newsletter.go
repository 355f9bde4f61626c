package http

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/devconfhq/mailroom"
)

const (
	minSubjectLength = 3
	minContentLength = 10
)

// adminOnly gates a handler behind the configured bearer token.
func (s *Server) adminOnly(fn appHandler) appHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if s.AdminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminToken)) != 1 {
			return &mailroom.Error{Code: mailroom.ErrUnauthorized, Message: "Admin authorization required."}
		}

		return fn(w, r)
	}
}

func (s *Server) sendNewsletterHandler(w http.ResponseWriter, r *http.Request) error {
	var req *mailroom.NewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req == nil {
		return &mailroom.Error{Code: mailroom.ErrInvalid, Message: "Invalid request body.", Err: err}
	}

	if len(strings.TrimSpace(req.Subject)) < minSubjectLength {
		return &mailroom.Error{Code: mailroom.ErrInvalid, Message: fmt.Sprintf("Subject must be at least %d characters.", minSubjectLength)}
	}
	if len(strings.TrimSpace(req.Content)) < minContentLength {
		return &mailroom.Error{Code: mailroom.ErrInvalid, Message: fmt.Sprintf("Content must be at least %d characters.", minContentLength)}
	}

	var (
		result *mailroom.BatchResult
		err    error
	)
	if req.TestMode {
		result, err = s.NewsletterService.SendTest(req.Subject, req.Content, req.TestEmail)
	} else {
		result, err = s.NewsletterService.SendToAll(req.Subject, req.Content)
	}
	if err != nil {
		return err
	}

	writeJSONResponse(w, http.StatusOK, &mailroom.NewsletterResponse{
		Success:  result.Success(),
		Message:  batchMessage(result),
		Sent:     result.Sent,
		Failed:   result.Failed,
		Total:    result.Total,
		TestMode: result.TestMode,
		Errors:   result.Errors,
	})

	return nil
}

func batchMessage(result *mailroom.BatchResult) string {
	if result.TestMode {
		return "Test newsletter sent."
	}
	if result.Failed > 0 {
		return fmt.Sprintf("Newsletter sent to %d of %d subscribers (%d failed).", result.Sent, result.Total, result.Failed)
	}
	return fmt.Sprintf("Newsletter sent to %d subscribers.", result.Sent)
}
