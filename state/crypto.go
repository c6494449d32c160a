package state

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"go.step.sm/crypto/x25519"
)

type PrivateKey [x25519.PrivateKeySize]byte
type PublicKey [x25519.PublicKeySize]byte

func GenerateKey() PrivateKey {
	_, key, err := x25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return PrivateKey(key)
}

func (k PrivateKey) Pubkey() PublicKey {
	val, err := x25519.PrivateKey(k[:]).PublicKey()
	if err != nil {
		panic(err)
	}
	return PublicKey(val)
}

func (k PrivateKey) MarshalText() ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString(k[:])), nil
}

func (k *PrivateKey) UnmarshalText(text []byte) error {
	raw, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(raw) != len(k) {
		return fmt.Errorf("private key must be %d bytes, got %d", len(k), len(raw))
	}
	copy(k[:], raw)
	return nil
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(base64.StdEncoding.EncodeToString(k[:])), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	raw, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(raw) != len(k) {
		return fmt.Errorf("public key must be %d bytes, got %d", len(k), len(raw))
	}
	copy(k[:], raw)
	return nil
}
