package address

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/crypto"
)

// PrivateKey is a secp256k1 signing key for an account-prefixed Address, the
// same curve and derivation the teacher's own crypto package uses for its
// NHB/ZNHB addresses.
type PrivateKey struct {
	*ecdsa.PrivateKey
}

// PublicKey is the public half of a PrivateKey.
type PublicKey struct {
	*ecdsa.PublicKey
}

// GeneratePrivateKey creates a new random signing key, used by the CLI
// tooling that provisions operator/admin accounts for a pool deployment.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// PrivateKeyFromBytes parses a raw secp256k1 private key.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the raw private key bytes.
func (k *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(k.PrivateKey)
}

// PubKey returns the public half of the key.
func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// Address derives this key's 20-byte account-prefixed Address the same way
// an Ethereum-style address is derived from a public key: Keccak-256 of the
// uncompressed point, last 20 bytes.
func (k *PublicKey) Address() Address {
	return MustNew(AccountPrefix, crypto.PubkeyToAddress(*k.PublicKey).Bytes())
}
