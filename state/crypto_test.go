package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	key := GenerateKey()
	assert.NotEqual(t, PrivateKey{}, key)

	txt, err := key.MarshalText()
	require.NoError(t, err)
	var back PrivateKey
	require.NoError(t, back.UnmarshalText(txt))
	assert.Equal(t, key, back)

	pub := key.Pubkey()
	pubTxt, err := pub.MarshalText()
	require.NoError(t, err)
	var pubBack PublicKey
	require.NoError(t, pubBack.UnmarshalText(pubTxt))
	assert.Equal(t, pub, pubBack)

	// derivation is deterministic
	assert.Equal(t, pub, back.Pubkey())
}

func TestKeyUnmarshalRejectsBadInput(t *testing.T) {
	var key PrivateKey
	assert.Error(t, key.UnmarshalText([]byte("not base64!")))
	assert.Error(t, key.UnmarshalText([]byte("aGVsbG8=")), "wrong length")
}
