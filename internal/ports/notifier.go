package ports

import "context"

// Notifier delivers a formatted text message to a messaging endpoint.
// A nil error means the message was accepted by the endpoint. Returned errors
// are logged as-is and must not carry credentials.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
