package crypto

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSignerRoundTrip(t *testing.T) {
	signer := NewHMACSigner([]byte("archive-key"))

	data := []byte(`{"symbol":"BTC"}`)
	sig := signer.Sign(data)

	assert.True(t, signer.Verify(data, sig))
	assert.False(t, signer.Verify([]byte(`{"symbol":"ETH"}`), sig))
}

func TestHMACSignerKnownVector(t *testing.T) {
	// RFC 4231 test case 2.
	signer := NewHMACSigner([]byte("Jefe"))
	sig := signer.Sign([]byte("what do ya want for nothing?"))
	assert.Equal(t,
		"5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		hex.EncodeToString(sig))
}

func TestCredentialsRoundTrip(t *testing.T) {
	creds := Credentials{
		TwilioAuthToken: "tw-secret",
		SendGridAPIKey:  "sg-secret",
	}

	blob, err := EncryptCredentials(creds, "hunter2")
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "tw-secret")

	got, err := DecryptCredentials(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestDecryptCredentialsWrongPassword(t *testing.T) {
	blob, err := EncryptCredentials(Credentials{TwilioAuthToken: "x"}, "right")
	require.NoError(t, err)

	_, err = DecryptCredentials(blob, "wrong")
	assert.Error(t, err)
}

func TestLoadCredentials(t *testing.T) {
	blob, err := EncryptCredentials(Credentials{SendGridAPIKey: "sg"}, "pw")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, blob, 0o600))

	creds, err := LoadCredentials(path, "pw")
	require.NoError(t, err)
	assert.Equal(t, "sg", creds.SendGridAPIKey)
}
