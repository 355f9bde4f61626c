package mailroom

// EmailService composes and dispatches the three outbound email kinds.
// The unsubscribe token may be empty for unconfirmed recipients; composers
// omit the unsubscribe footer in that case.
type EmailService interface {
	SendConfirmationEmail(to, confirmationToken, unsubscribeToken string) error
	SendWelcomeEmail(to, unsubscribeToken string) error
	SendNewsletterEmail(to, subject, content, unsubscribeToken string) error
}

// Sender is the narrow transport capability behind EmailService: deliver one
// rendered email and return the provider's message ID.
type Sender interface {
	Send(to, subject, htmlBody string) (string, error)
}

// NewsletterService is the interface that wraps batch newsletter dispatch.
type NewsletterService interface {
	SendTest(subject, content, recipient string) (*BatchResult, error)
	SendToAll(subject, content string) (*BatchResult, error)
}

// SendError records one recipient that could not be delivered to.
type SendError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// BatchResult aggregates per-recipient outcomes of one dispatch run. A batch
// is considered successful as long as at least one send went through.
type BatchResult struct {
	Total    int
	Sent     int
	Failed   int
	Errors   []SendError
	TestMode bool
}

// Success reports whether the batch delivered to anyone at all.
func (r *BatchResult) Success() bool {
	return r.Sent > 0
}

// NewsletterRequest is the JSON body of the admin send endpoint.
type NewsletterRequest struct {
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	TestMode  bool   `json:"testMode"`
	TestEmail string `json:"testEmail,omitempty"`
}

// NewsletterResponse is the JSON body returned by the admin send endpoint.
type NewsletterResponse struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	Sent     int         `json:"sent"`
	Failed   int         `json:"failed,omitempty"`
	Total    int         `json:"total,omitempty"`
	TestMode bool        `json:"testMode,omitempty"`
	Errors   []SendError `json:"errors,omitempty"`
}
