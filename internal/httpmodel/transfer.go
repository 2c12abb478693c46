package httpmodel

import "fmt"

// TransferRequest
//
// swagger:model
type TransferRequest struct {

	// The identifier of the quota group donating the time
	//
	// required: true
	DonorID string `json:"donor_id"`

	// The identifier of the quota group receiving the time
	//
	// required: true
	AcceptorID string `json:"acceptor_id"`

	// The number of hours to transfer
	//
	// required: true
	Hours float64 `json:"hours"`
}

// Validate verifies that all the required fields in a transfer request are present and sensible.
// The balance check itself happens under a row lock when the transfer runs.
func (t TransferRequest) Validate() error {
	if t.DonorID == "" {
		return fmt.Errorf("a donor quota group ID is required")
	}
	if t.AcceptorID == "" {
		return fmt.Errorf("an acceptor quota group ID is required")
	}
	if t.Hours <= 0 {
		return fmt.Errorf("the number of hours to transfer must be greater than zero")
	}
	return nil
}
