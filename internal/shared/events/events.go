package events

// Routing keys on the bank.events exchange. The routing key always equals
// the event type carried in the payload.
const (
	UserRegistered = "user.registered"
	AccountOpened  = "account.opened"
	CardIssued     = "card.issued"
	CardDeleted    = "card.deleted"
)

const (
	// Exchange is the durable topic exchange shared by both services.
	Exchange = "bank.events"
	// UserRegisteredQueue is the accounts-service queue bound to
	// user.registered.
	UserRegisteredQueue = "accounts.user.registered"
)

// UserRegisteredEvent carries the store-assigned creation timestamp, not the
// publish time.
type UserRegisteredEvent struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type AccountOpenedEvent struct {
	Event     string `json:"event"`
	AccountID string `json:"accountId"`
	OwnerID   string `json:"ownerId"`
	Timestamp string `json:"timestamp"`
}

// CardEvent covers card.issued and card.deleted; AccountID is empty on
// deletion.
type CardEvent struct {
	Event     string `json:"event"`
	AccountID string `json:"accountId,omitempty"`
	OwnerID   string `json:"ownerId"`
	CardID    string `json:"cardId"`
	Timestamp string `json:"timestamp"`
}
