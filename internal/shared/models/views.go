package models

// BalanceView is the read-optimised projection served by the balance
// endpoint and cached in Redis. OwnerID is carried for ownership checks but
// never serialised to the API response.
type BalanceView struct {
	AccountID string `json:"accountId"`
	OwnerID   string `json:"-"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}
