package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certo/pkg/platform/sentinel"
)

func TestSaveAndOpen(t *testing.T) {
	vault, err := NewVault(t.TempDir())
	require.NoError(t, err)

	path, err := vault.Save("ENG_TRACK-ABC-XYZ123", []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "/pdfs/ENG_TRACK-ABC-XYZ123.pdf", path)

	data, err := vault.Open("ENG_TRACK-ABC-XYZ123.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)
}

func TestOpenMissing(t *testing.T) {
	vault, err := NewVault(t.TempDir())
	require.NoError(t, err)

	_, err = vault.Open("NOPE.pdf")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestOpenRejectsTraversal(t *testing.T) {
	vault, err := NewVault(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../secret.pdf", "a/b.pdf", "..%2Fx.pdf", ".pdf", "noext"} {
		_, err := vault.Open(name)
		assert.ErrorIs(t, err, sentinel.ErrNotFound, "filename %q should be rejected", name)
	}
}

func TestCredentialIDFor(t *testing.T) {
	id, ok := CredentialIDFor("ENG_TRACK-ABC-XYZ123.pdf")
	require.True(t, ok)
	assert.Equal(t, "ENG_TRACK-ABC-XYZ123", id)

	_, ok = CredentialIDFor("../evil.pdf")
	assert.False(t, ok)
}
