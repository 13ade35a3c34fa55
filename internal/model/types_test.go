package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSortServices verifies case-insensitive ordering with a stable,
// byte-order tie break for names that differ only in case.
func TestSortServices(t *testing.T) {
	services := []Service{
		{Name: "whoami"},
		{Name: "Bazarr"},
		{Name: "adguard"},
		{Name: "bazarr"},
		{Name: "Radarr"},
	}

	SortServices(services)

	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"adguard", "Bazarr", "bazarr", "Radarr", "whoami"}, names)
}

// TestSortServices_Empty checks that sorting nil and empty slices is a no-op.
func TestSortServices_Empty(t *testing.T) {
	assert.NotPanics(t, func() { SortServices(nil) })
	assert.NotPanics(t, func() { SortServices([]Service{}) })
}

func TestService_HasURL(t *testing.T) {
	assert.True(t, Service{Name: "plex", URL: "https://plex.DOMAIN"}.HasURL())
	assert.False(t, Service{Name: "plex"}.HasURL())
}

func TestHeaderEntry_String(t *testing.T) {
	h := HeaderEntry{DisplayName: "🎬 Media", Key: "media"}
	assert.Equal(t, "🎬 Media (media)", h.String())
}

// TestCLIError verifies the custom error type used for exit code mapping.
func TestCLIError(t *testing.T) {
	t.Run("simple error", func(t *testing.T) {
		err := NewCLIError(ExitGeneralError, "README.md not found")
		assert.Equal(t, ExitGeneralError, err.Code)
		assert.Equal(t, "README.md not found", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := errors.New("permission denied")
		err := WrapCLIError(ExitGeneralError, "failed to write README.md", inner)
		assert.Equal(t, ExitGeneralError, err.Code)
		assert.Contains(t, err.Error(), "permission denied")
		assert.Equal(t, inner, err.Unwrap())
	})

	// Verify errors.Is works with unwrapped errors (Go 1.13+ error chain).
	t.Run("errors.Is chain", func(t *testing.T) {
		inner := errors.New("permission denied")
		err := WrapCLIError(ExitGeneralError, "failed to write README.md", inner)
		assert.True(t, errors.Is(err, inner))
	})
}
