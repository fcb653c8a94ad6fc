package backstop

import "errors"

var (
	ErrNilState               = errors.New("backstop: state not configured")
	ErrInvalidAmount          = errors.New("backstop: amount must be positive")
	ErrInsufficientShares     = errors.New("backstop: insufficient backstop shares")
	ErrInsufficientTokens     = errors.New("backstop: insufficient backstop token balance")
	ErrQ4WNotMatured          = errors.New("backstop: queued withdrawal not yet matured")
	ErrQ4WQueueFull           = errors.New("backstop: maximum queued-withdrawal entries exceeded")
	ErrQ4WEmpty               = errors.New("backstop: no queued withdrawals to dequeue")
	ErrQ4WInsufficient        = errors.New("backstop: queued-withdrawal amount exceeds queued shares")
	ErrPoolNotInRewardZone    = errors.New("backstop: pool is not in the reward zone")
	ErrRewardZoneFull         = errors.New("backstop: reward zone is full")
	ErrRewardZoneSwapTooSmall = errors.New("backstop: replacement pool balance does not exceed the swap-out candidate")
	ErrUnauthorized           = errors.New("backstop: caller not authorized")
	ErrBelowThreshold         = errors.New("backstop: pool balance below minimum backstop deposit threshold")
	ErrBadRequest             = errors.New("backstop: bad request")
	ErrDuplicatePoolInClaim   = errors.New("backstop: duplicate pool id in claim request")
	ErrLPPoolNotConfigured    = errors.New("backstop: no LP pool collaborator configured")
)
