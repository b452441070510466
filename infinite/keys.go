package infinite

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// NewPrivateKey generates a fresh secp256k1 authentication key
func NewPrivateKey() (*ecdsa.PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return key, nil
}

// PrivateKeyHex encodes a private key for durable storage
func PrivateKeyHex(key *ecdsa.PrivateKey) string {
	return hexutil.Encode(crypto.FromECDSA(key))[2:]
}

// PrivateKeyFromHex decodes a stored private key
func PrivateKeyFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	if len(hexKey) >= 2 && hexKey[:2] == "0x" {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// PublicKeyHex derives the compressed public key the partner identifies the
// device by
func PublicKeyHex(key *ecdsa.PrivateKey) string {
	return hexutil.Encode(crypto.CompressPubkey(&key.PublicKey))
}

// SignChallenge signs the partner's challenge message with an EIP-191
// personal-message signature
func SignChallenge(message string, key *ecdsa.PrivateKey) (string, error) {
	hash := accounts.TextHash([]byte(message))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", fmt.Errorf("failed to sign challenge: %w", err)
	}
	return hexutil.Encode(sig), nil
}
