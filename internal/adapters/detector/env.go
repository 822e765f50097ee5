// Package detector selects the progress output mode from the environment.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents the progress rendering mode.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeOn prints progress lines.
	ModeOn
	// ModeOff prints nothing but logs.
	ModeOff
)

// DetectEnvironment returns ModeOn when stderr is a terminal outside CI.
func DetectEnvironment() OutputMode {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) OutputMode {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return ModeOff
	}
	return ModeOn
}

// ResolveMode applies the --progress flag to the detected mode.
// userFlag should be one of "auto", "on", "off" or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "on":
		return ModeOn
	case "off":
		return ModeOff
	default:
		return autoDetected
	}
}
