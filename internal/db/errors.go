package db

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Validation errors surfaced to callers before any mutation takes place.
var (
	ErrInvalidTransferAmount = errors.New("the transfer amount must be greater than zero")
	ErrTransferToSameGroup   = errors.New("time can't be transferred to the donor's own quota group")
	ErrInsufficientQuotaTime = errors.New("the donor quota group has insufficient time for the transfer")
)

// LockConflictError reports that an application's processing lock is held by another operator
// whose lock hasn't aged past the cooldown yet. The whole workflow entry must be retried, not
// just the lock acquisition, since the application may have changed in the meantime.
type LockConflictError struct {
	ApplicationCode string
	Holder          string
	Since           time.Time
}

func (e *LockConflictError) Error() string {
	return fmt.Sprintf(
		"application %s is being processed by %s (since %s)",
		e.ApplicationCode, e.Holder, e.Since.Format(time.RFC3339),
	)
}
