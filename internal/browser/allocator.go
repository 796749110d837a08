// internal/browser/allocator.go
package browser

import (
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/extjswd/internal/config"
)

// allocatorFlag is a Chrome command line switch. A bool value of false drops
// the switch; a string value is passed as --name=value.
type allocatorFlag struct {
	name  string
	value interface{}
}

// allocatorFlags lists the switches derived from cfg, in the order they are applied.
func allocatorFlags(cfg config.BrowserConfig) []allocatorFlag {
	flags := []allocatorFlag{
		{"headless", cfg.Headless},
		{"enable-automation", true},
		{"disable-dev-shm-usage", true},
	}
	if cfg.Headless {
		flags = append(flags,
			allocatorFlag{"hide-scrollbars", true},
			allocatorFlag{"mute-audio", true},
		)
	}
	if cfg.DisableCache {
		flags = append(flags,
			allocatorFlag{"disk-cache-size", "1"},
			allocatorFlag{"media-cache-size", "1"},
			allocatorFlag{"disable-cache", true},
		)
	}
	if cfg.IgnoreTLSErrors {
		flags = append(flags,
			allocatorFlag{"ignore-certificate-errors", true},
			allocatorFlag{"allow-insecure-localhost", true},
		)
	}
	// Extra args may be written as "--name" or "--name=value".
	for _, arg := range cfg.Args {
		arg = strings.TrimLeft(arg, "-")
		if arg == "" {
			continue
		}
		if name, value, found := strings.Cut(arg, "="); found {
			flags = append(flags, allocatorFlag{name, value})
		} else {
			flags = append(flags, allocatorFlag{arg, true})
		}
	}
	return flags
}

// windowSize reads the configured viewport, reporting false when either side is unset.
func windowSize(viewport map[string]int) (int, int, bool) {
	w, h := viewport["width"], viewport["height"]
	return w, h, w > 0 && h > 0
}

// DefaultAllocatorOptions builds the exec allocator options for cfg. The list
// is built from scratch rather than from chromedp.DefaultExecAllocatorOptions
// so headless mode follows the configuration.
func DefaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	}
	for _, f := range allocatorFlags(cfg) {
		opts = append(opts, chromedp.Flag(f.name, f.value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if w, h, ok := windowSize(cfg.Viewport); ok {
		opts = append(opts, chromedp.WindowSize(w, h))
	}
	return opts
}
