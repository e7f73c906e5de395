package hash

import (
	"testing"
)

func TestSHA256Hasher_HashBytes(t *testing.T) {
	hasher := NewSHA256Hasher()

	t.Run("matches the known vector", func(t *testing.T) {
		want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
		if got := hasher.HashBytes([]byte("hello")); got != want {
			t.Errorf("HashBytes = %s, want %s", got, want)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		content := []byte("export const session = 1\n")
		if a, b := hasher.HashBytes(content), hasher.HashBytes(content); a != b {
			t.Errorf("HashBytes inconsistent: got %s and %s", a, b)
		}
	})

	t.Run("differs for different content", func(t *testing.T) {
		a := hasher.HashBytes([]byte("APP_NAME=my-app\n"))
		b := hasher.HashBytes([]byte("APP_NAME=other-app\n"))
		if a == b {
			t.Errorf("different content hashed identically: %s", a)
		}
	})

	t.Run("handles empty content", func(t *testing.T) {
		want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
		if got := hasher.HashBytes(nil); got != want {
			t.Errorf("HashBytes(nil) = %s, want %s", got, want)
		}
	})
}
