// Package token declares the external fungible-token collaborator interface
// the pool and backstop engines move balances through. Neither engine
// implements transfers itself; both call through this interface exactly as
// the Rust source's `TokenClient` does.
package token

import "math/big"

// Token is the narrow transfer surface the engines require.
type Token interface {
	// Transfer moves amount from the module's own balance to to.
	Transfer(to string, amount *big.Int) error
	// TransferFrom moves amount from from to the module's own balance,
	// subject to an allowance from's address has granted the module.
	TransferFrom(from string, amount *big.Int) error
	// BalanceOf returns holder's balance of this token.
	BalanceOf(holder string) (*big.Int, error)
}
