// internal/browser/allocator_test.go
package browser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/extjswd/internal/config"
)

func flagMap(flags []allocatorFlag) map[string]interface{} {
	m := make(map[string]interface{}, len(flags))
	for _, f := range flags {
		m[f.name] = f.value
	}
	return m
}

func TestAllocatorFlags(t *testing.T) {
	t.Run("Headless", func(t *testing.T) {
		flags := flagMap(allocatorFlags(config.BrowserConfig{Headless: true}))
		assert.Equal(t, true, flags["headless"])
		assert.Equal(t, true, flags["hide-scrollbars"])
		assert.NotContains(t, flags, "disable-cache")
	})

	t.Run("HeadlessDisabled", func(t *testing.T) {
		flags := flagMap(allocatorFlags(config.BrowserConfig{Headless: false}))
		assert.Equal(t, false, flags["headless"], "false drops the switch")
		assert.NotContains(t, flags, "hide-scrollbars")
	})

	t.Run("CacheDisabled", func(t *testing.T) {
		flags := flagMap(allocatorFlags(config.BrowserConfig{DisableCache: true}))
		assert.Equal(t, "1", flags["disk-cache-size"])
		assert.Equal(t, "1", flags["media-cache-size"])
		assert.Equal(t, true, flags["disable-cache"])
	})

	t.Run("IgnoreTLSErrors", func(t *testing.T) {
		flags := flagMap(allocatorFlags(config.BrowserConfig{IgnoreTLSErrors: true}))
		assert.Equal(t, true, flags["ignore-certificate-errors"])
		assert.Equal(t, true, flags["allow-insecure-localhost"])
	})

	t.Run("CustomArgs", func(t *testing.T) {
		got := allocatorFlags(config.BrowserConfig{
			Args: []string{"--custom-arg1", "lang=de-DE", "--user-agent=extjswd test", "--"},
		})
		want := []allocatorFlag{
			{"headless", false},
			{"enable-automation", true},
			{"disable-dev-shm-usage", true},
			{"custom-arg1", true},
			{"lang", "de-DE"},
			{"user-agent", "extjswd test"},
		}
		if diff := cmp.Diff(want, got, cmp.AllowUnexported(allocatorFlag{})); diff != "" {
			t.Errorf("allocatorFlags mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestWindowSize(t *testing.T) {
	w, h, ok := windowSize(map[string]int{"width": 1920, "height": 1080})
	assert.True(t, ok)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	_, _, ok = windowSize(map[string]int{"width": 1920})
	assert.False(t, ok)
	_, _, ok = windowSize(nil)
	assert.False(t, ok)
}

func TestDefaultAllocatorOptions(t *testing.T) {
	base := DefaultAllocatorOptions(config.BrowserConfig{})
	// Four fixed options plus one per flag.
	assert.Len(t, base, 4+len(allocatorFlags(config.BrowserConfig{})))

	full := DefaultAllocatorOptions(config.BrowserConfig{
		Headless: true,
		ExecPath: "/usr/bin/chromium",
		Viewport: map[string]int{"width": 1366, "height": 768},
	})
	assert.Len(t, full, 4+len(allocatorFlags(config.BrowserConfig{Headless: true}))+2)
}
