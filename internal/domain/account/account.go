// Package account defines the account entities consumed by the client.
package account

// Account is a bank account as returned by the remote API. The client
// consumes accounts but never owns them; balances only change server side.
type Account struct {
	ID      string  `json:"id"`
	Number  string  `json:"number"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// CreateRequest is the body of POST /accounts.
type CreateRequest struct {
	Name string `json:"name"`
}

// CreateResponse carries the identifier of a newly created account.
type CreateResponse struct {
	AccountID string `json:"accountId"`
}

// UpdateRequest renames an existing account via PUT /accounts/{id}.
type UpdateRequest struct {
	ID   string `json:"-"`
	Name string `json:"name"`
}

// ListParams filters GET /accounts. Empty fields fetch the full
// unfiltered page.
type ListParams struct {
	Number string `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
}
