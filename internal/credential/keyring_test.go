package credential_test

import (
	"testing"

	"taskManager/internal/credential"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_TokenLifecycle(t *testing.T) {
	t.Setenv(credential.EnvToken, "")
	s := credential.NewStore(keyring.NewArrayKeyring(nil))

	_, err := s.Token()
	assert.ErrorIs(t, err, credential.ErrNoToken)

	require.NoError(t, s.SetToken("jwt-1"))
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", tok)

	require.NoError(t, s.DeleteToken())
	require.NoError(t, s.DeleteToken())
	_, err = s.Token()
	assert.ErrorIs(t, err, credential.ErrNoToken)
}

func TestStore_EnvOverrides(t *testing.T) {
	s := credential.NewStore(keyring.NewArrayKeyring([]keyring.Item{{Key: "api-token", Data: []byte("stored")}}))

	t.Setenv(credential.EnvToken, "from-env")
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)
}
