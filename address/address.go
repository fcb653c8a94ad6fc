// Package address provides the bech32-encoded account identifiers shared by
// the pool and backstop engines. Key management itself (the host chain's
// authorization layer) is out of scope — this package only needs a stable,
// comparable account identifier plus the human-readable encoding the rest of
// the pack uses for on-chain addresses.
package address

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// Prefix distinguishes the identifier namespaces this protocol recognizes.
type Prefix string

const (
	// AccountPrefix identifies ordinary depositor/borrower/liquidator
	// accounts.
	AccountPrefix Prefix = "blnd"
	// PoolPrefix identifies a Pool contract instance.
	PoolPrefix Prefix = "pool"
	// BackstopPrefix identifies the Backstop contract instance.
	BackstopPrefix Prefix = "bstp"
)

// Address is a 20-byte account identifier with a human-readable prefix.
type Address struct {
	prefix Prefix
	bytes  []byte
}

// New constructs an Address, validating the byte length.
func New(prefix Prefix, b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("address: must be 20 bytes, got %d", len(b))
	}
	cloned := append([]byte(nil), b...)
	return Address{prefix: prefix, bytes: cloned}, nil
}

// MustNew constructs an Address and panics on invalid input.
func MustNew(prefix Prefix, b []byte) Address {
	addr, err := New(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

// IsZero reports whether the address carries no bytes — the sentinel for
// "recipient not configured" used throughout the pool and backstop engines.
func (a Address) IsZero() bool {
	if len(a.bytes) == 0 {
		return true
	}
	for _, b := range a.bytes {
		if b != 0 {
			return false
		}
	}
	return true
}

// Bytes returns a defensive copy of the address's raw bytes.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a.bytes...)
}

// Prefix returns the address's namespace prefix.
func (a Address) Prefix() Prefix { return a.prefix }

// String renders the bech32 encoding of the address.
func (a Address) String() string {
	if len(a.bytes) == 0 {
		return ""
	}
	conv, err := bech32.ConvertBits(a.bytes, 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Decode parses a bech32-encoded address string.
func Decode(s string) (Address, error) {
	prefix, decoded, err := bech32.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("address: invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("address: error converting bits: %w", err)
	}
	return New(Prefix(prefix), conv)
}

// Key returns a comparable map key derived from the address, used by the
// positions/ledger maps keyed by account.
func (a Address) Key() string {
	return string(a.prefix) + ":" + string(a.bytes)
}
