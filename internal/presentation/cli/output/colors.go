package output

import "os"

// colorSupport caches the detection result for the life of the process.
var colorSupport *bool

// IsColorSupported reports whether ANSI colors should be emitted on stdout.
// The first call probes the environment; later calls return the cached
// answer.
func IsColorSupported() bool {
	if colorSupport == nil {
		enabled := detectColorSupport()
		colorSupport = &enabled
	}
	return *colorSupport
}

// ResetColorDetection drops the cached detection result so the next
// IsColorSupported call probes the environment again.
func ResetColorDetection() {
	colorSupport = nil
}

func detectColorSupport() bool {
	// https://no-color.org/: any NO_COLOR value disables colors.
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if _, set := os.LookupEnv("FORCE_COLOR"); set {
		return true
	}

	stat, err := os.Stdout.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice == 0 {
		return false
	}

	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
