package driven

import "context"

// Notifier delivers a finished report to the user out-of-band
// (e.g. email). Delivery failures are never fatal to a run.
type Notifier interface {
	// Deliver sends the document. Failures must be wrapped with
	// domain.ErrDelivery.
	Deliver(ctx context.Context, subject, body string) error
}
