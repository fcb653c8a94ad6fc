package backstop

import (
	"math/big"

	"blendpool/token"
)

// LPPool is the narrow collaborator Claim uses to reinvest accrued reward as
// new backstop shares: it converts a single-sided deposit of reward tokens
// into LP/backstop-share tokens, mirroring the Comet pool's
// dep_tokn_amt_in_get_lp_tokns_out entry point the original claim flow calls.
type LPPool interface {
	// SingleSidedDeposit deposits amountIn reward tokens and returns the
	// number of LP/backstop-share tokens minted, rejecting the call with
	// ErrBelowThreshold-style slippage if fewer than minLPOut would result.
	SingleSidedDeposit(amountIn, minLPOut *big.Int) (*big.Int, error)
}

// PassthroughLPPool is a 1:1 LPPool: it mints one backstop token per reward
// token deposited. This system models a single underlying token for both the
// backstop deposit asset and the reward/emission asset, rather than the
// original's distinct BLND and BLND:USDC-LP tokens, so there is no real swap
// to perform — the collaborator still enforces minLPOut so callers exercise
// the same slippage-guarded interface a real AMM-backed pool would expose.
type PassthroughLPPool struct {
	underlying token.Token
}

// NewPassthroughLPPool wraps underlying, the backstop's own token.
func NewPassthroughLPPool(underlying token.Token) *PassthroughLPPool {
	return &PassthroughLPPool{underlying: underlying}
}

// SingleSidedDeposit implements LPPool.
func (p *PassthroughLPPool) SingleSidedDeposit(amountIn, minLPOut *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	lpOut := new(big.Int).Set(amountIn)
	if minLPOut != nil && minLPOut.Sign() > 0 && lpOut.Cmp(minLPOut) < 0 {
		return nil, ErrBelowThreshold
	}
	return lpOut, nil
}
