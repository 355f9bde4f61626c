package mailroom

// SubscriptionService is the interface that wraps the subscription state
// machine: subscribe, confirm, resend and the two unsubscribe entry points.
// Idempotent repeats (confirming an active subscriber, unsubscribing twice)
// are reported through the Already* flags on the results, not as errors.
type SubscriptionService interface {
	Subscribe(req *SubscribeRequest) (*SubscribeResult, error)
	Confirm(email, token string) (*ConfirmResult, error)
	ResendConfirmation(email string) (*ResendResult, error)
	UnsubscribeByToken(token string) (*UnsubscribeResult, error)
	UnsubscribeByEmail(email string) (*UnsubscribeResult, error)
}

// SubscribeRequest carries the visitor's email plus best-effort provenance
// captured at the HTTP boundary.
type SubscribeRequest struct {
	Email     string `json:"email"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type SubscribeResult struct {
	Message           string
	AlreadySubscribed bool
}

type ConfirmResult struct {
	Email            string
	AlreadyConfirmed bool
}

type ResendResult struct {
	Message          string
	AlreadyConfirmed bool
}

type UnsubscribeResult struct {
	Message             string
	AlreadyUnsubscribed bool
}

// SubscriptionResponse is the JSON body returned by the subscription endpoints.
type SubscriptionResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	AlreadySubscribed   bool   `json:"alreadySubscribed,omitempty"`
	AlreadyConfirmed    bool   `json:"alreadyConfirmed,omitempty"`
	AlreadyUnsubscribed bool   `json:"alreadyUnsubscribed,omitempty"`
}
