package avjobsearch

import (
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateWithFallback(t *testing.T) {
	cards := make([]playwright.Locator, 3)

	t.Run("primary error surfaces even when the fallback would match", func(t *testing.T) {
		fallbackCalled := false
		_, err := locateWithFallback(
			func() ([]playwright.Locator, error) { return nil, fmt.Errorf("detached frame") },
			func() ([]playwright.Locator, error) { fallbackCalled = true; return cards, nil },
		)
		require.Error(t, err)
		assert.False(t, fallbackCalled)
	})

	t.Run("fallback used when primary matches nothing", func(t *testing.T) {
		got, err := locateWithFallback(
			func() ([]playwright.Locator, error) { return nil, nil },
			func() ([]playwright.Locator, error) { return cards, nil },
		)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("primary matches skip the fallback", func(t *testing.T) {
		fallbackCalled := false
		got, err := locateWithFallback(
			func() ([]playwright.Locator, error) { return cards[:1], nil },
			func() ([]playwright.Locator, error) { fallbackCalled = true; return cards, nil },
		)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.False(t, fallbackCalled)
	})

	t.Run("both empty means the page is exhausted", func(t *testing.T) {
		got, err := locateWithFallback(
			func() ([]playwright.Locator, error) { return nil, nil },
			func() ([]playwright.Locator, error) { return nil, fmt.Errorf("no legacy layout") },
		)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestExternalIDAndAbsoluteURL(t *testing.T) {
	assert.Equal(t, "fd-123", externalID("/jobs/flight-operations/fd-123/"))
	assert.Equal(t, "fd-123", externalID("https://www.aviationjobsearch.com/jobs/fd-123"))
	assert.Equal(t, baseURL+"/jobs/fd-123", absoluteURL("/jobs/fd-123"))
	assert.Equal(t, "https://other.test/x", absoluteURL("https://other.test/x"))
}
