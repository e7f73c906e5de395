package vars

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Generator synthesizes values for generate-backed placeholders.
type Generator interface {
	// Secret returns a new random secret.
	Secret() (string, error)

	// UUID returns a new v4 UUID string.
	UUID() string
}

// RealGenerator produces cryptographically random values.
type RealGenerator struct{}

// NewRealGenerator creates a new RealGenerator.
func NewRealGenerator() *RealGenerator {
	return &RealGenerator{}
}

// Secret returns 32 random bytes, hex-encoded.
func (g *RealGenerator) Secret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// UUID returns a new v4 UUID.
func (g *RealGenerator) UUID() string {
	return uuid.NewString()
}

// FakeGenerator returns deterministic sequences for testing.
type FakeGenerator struct {
	secrets int
	uuids   int
}

// NewFakeGenerator creates a new FakeGenerator.
func NewFakeGenerator() *FakeGenerator {
	return &FakeGenerator{}
}

// Secret returns fake-secret-0001, fake-secret-0002, ...
func (g *FakeGenerator) Secret() (string, error) {
	g.secrets++
	return fmt.Sprintf("fake-secret-%04d", g.secrets), nil
}

// UUID returns a fixed-shape UUID counting up from 1.
func (g *FakeGenerator) UUID() string {
	g.uuids++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", g.uuids)
}
