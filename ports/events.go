package ports

import "context"

// EventPublisher publishes auth events to notify other instances
type EventPublisher interface {
	// PublishLogin publishes a completed-login event. Method names the path
	// taken: "mfa" or "session".
	PublishLogin(ctx context.Context, email, method string) error

	// PublishLogout publishes a session-revocation event.
	PublishLogout(ctx context.Context, email string) error
}
