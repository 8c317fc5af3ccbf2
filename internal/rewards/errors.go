package rewards

import "errors"

// Business-rule rejections. These are expected user-facing outcomes, not faults.
var (
	ErrCooldown          = errors.New("share cooldown not elapsed")
	ErrShareInvalid      = errors.New("share canceled or invalid")
	ErrSessionLimit      = errors.New("trade session limit reached")
	ErrInsufficientFunds = errors.New("insufficient fee balance")
	ErrNothingToClaim    = errors.New("nothing to claim")
	ErrUnknownStatus     = errors.New("unknown share status")
)
