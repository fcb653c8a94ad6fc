package pool

import "errors"

// Sentinel errors for the pool engine. Each maps to a numeric wire code via
// protocolerr.CodeOf (see protocolerr package) so RPC responses stay
// wire-compatible with the taxonomy in spec.md §7 while the Go call sites
// keep using errors.Is/errors.As idiomatically.
var (
	ErrNilState                = errors.New("pool: state not configured")
	ErrPoolNotConfigured       = errors.New("pool: pool identifier not configured")
	ErrBadRequest              = errors.New("pool: malformed request")
	ErrInvalidPoolConfigArgs   = errors.New("pool: invalid pool config arguments")
	ErrInvalidReserveMetadata  = errors.New("pool: invalid reserve metadata")
	ErrStatusNotAllowed        = errors.New("pool: action not allowed in current status")
	ErrInvalidHealthFactor     = errors.New("pool: resulting health factor below required threshold")
	ErrInvalidPoolStatus       = errors.New("pool: invalid pool status transition")
	ErrInvalidUtilizationRate  = errors.New("pool: utilization rate exceeds limit")
	ErrMaxPositionsExceeded    = errors.New("pool: maximum position count exceeded")
	ErrReserveNotFound         = errors.New("pool: reserve not found")
	ErrReserveDisabled         = errors.New("pool: reserve disabled")
	ErrExceededSupplyCap       = errors.New("pool: supply cap exceeded")
	ErrMinCollateralNotMet     = errors.New("pool: minimum collateral requirement not met")
	ErrInvalidPrice            = errors.New("pool: oracle price missing or stale")
	ErrInvalidLiquidation      = errors.New("pool: position is not eligible for liquidation")
	ErrAuctionInProgress       = errors.New("pool: auction already in progress for this user")
	ErrInvalidLiquidationLarge = errors.New("pool: liquidation percent too large")
	ErrInvalidLiquidationSmall = errors.New("pool: liquidation percent too small")
	ErrInterestTooSmall        = errors.New("pool: accrued interest too small to auction")
	ErrInvalidBid              = errors.New("pool: invalid auction bid assets")
	ErrInvalidLot              = errors.New("pool: invalid auction lot assets")
	ErrInvalidBTokenMint       = errors.New("pool: invalid b-token mint amount")
	ErrInvalidBTokenBurn       = errors.New("pool: invalid b-token burn amount")
	ErrInvalidDTokenMint       = errors.New("pool: invalid d-token mint amount")
	ErrInvalidDTokenBurn       = errors.New("pool: invalid d-token burn amount")
	ErrNoAuction               = errors.New("pool: no auction exists for this user/type")
	ErrAuctionNotStale         = errors.New("pool: auction has not yet reached the stale threshold")
	ErrInsufficientBalance     = errors.New("pool: insufficient balance")
	ErrInsufficientLiquidity   = errors.New("pool: insufficient pool liquidity")
	ErrInvalidAmount           = errors.New("pool: amount must be positive")
	ErrUnauthorized            = errors.New("pool: caller not authorized")
	ErrQueuedConfigNotReady    = errors.New("pool: queued reserve config still time-locked")
	ErrNoQueuedConfig          = errors.New("pool: no queued reserve config for this asset")
)
