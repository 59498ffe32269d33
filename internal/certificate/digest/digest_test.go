package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	// Known vector: sha256("abc").
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		Hash([]byte("abc")))

	// Empty input is still a valid digest.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Hash(nil))

	assert.Equal(t, Hash([]byte("same")), Hash([]byte("same")))
	assert.NotEqual(t, Hash([]byte("a")), Hash([]byte("b")))
}
