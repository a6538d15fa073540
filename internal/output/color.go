package output

import (
	"fmt"
	"io"
	"os"
)

// ColorMode is the value of the --color flag.
type ColorMode string

// Color modes accepted by --color.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// noColorEnv disables color in auto mode when set to any non-empty value.
const noColorEnv = "NO_COLOR"

// ParseColorMode validates a --color value. An empty value means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return ColorMode(s), nil
	default:
		return "", NewUserError(fmt.Sprintf("invalid --color %q: want auto, always, or never", s))
	}
}

// Enabled reports whether styled output should be used for a writer whose
// terminal status is isTTY. Auto mode also respects NO_COLOR.
func (m ColorMode) Enabled(isTTY bool) bool {
	switch m {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTTY && os.Getenv(noColorEnv) == ""
	}
}

// ResolveColorMode parses colorMode leniently and applies it to isTTY.
// Unknown values behave like auto.
func ResolveColorMode(colorMode string, isTTY bool) bool {
	mode, err := ParseColorMode(colorMode)
	if err != nil {
		mode = ColorAuto
	}
	return mode.Enabled(isTTY)
}

// IsTTY reports whether writer is an *os.File attached to a terminal.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
