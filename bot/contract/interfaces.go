package contract

import "context"

// InquiryStore persists completed enquiries. Implementations must keep
// ListAll in insertion order and must never deduplicate on Append;
// duplicate detection happens through Exists before committing.
type InquiryStore interface {
	// Exists reports whether any committed inquiry matches the given
	// mobile OR the given email. Either match blocks a re-registration.
	Exists(ctx context.Context, mobile, email string) (bool, error)

	// Append durably records the inquiry, assigning CreatedAt (and an
	// ID) when absent.
	Append(ctx context.Context, inq *Inquiry) error

	// Register performs Exists-then-Append as one serialized step and
	// returns ErrDuplicateContact when the contact is already known.
	// The flow uses it for the terminal commit so two concurrent
	// sessions with the same contact cannot both land.
	Register(ctx context.Context, inq *Inquiry) error

	// ListAll returns every committed inquiry in insertion order.
	ListAll(ctx context.Context) ([]Inquiry, error)
}

// Responder is the fallback collaborator consulted when an utterance
// falls outside the structured flow. Its internals are opaque; failures
// surface as ErrGatewayUnavailable and callers substitute fixed copy.
type Responder interface {
	Respond(ctx context.Context, history []Message) (string, error)
}
