package utils

import "os"

// Terminal color codes using ANSI escape sequences
const (
	ResetColor   = "\033[0m"
	RedColor     = "\033[31m" // errors
	GreenColor   = "\033[32m" // finished items
	YellowColor  = "\033[33m" // warnings
	BlueColor    = "\033[34m" // stage progress
	MagentaColor = "\033[35m" // file paths and item titles
	CyanColor    = "\033[36m" // debug
)

// colorEnabled is false when NO_COLOR is set (https://no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

// SetColorEnabled toggles ANSI colouring of log messages.
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// ColoredText wraps text with color codes and reset at the end
func ColoredText(text string, color string) string {
	if !colorEnabled || text == "" {
		return text
	}
	return color + text + ResetColor
}

// Info returns blue-colored text for stage progress
func Info(text string) string {
	return ColoredText(text, BlueColor)
}

// Success returns green-colored text
func Success(text string) string {
	return ColoredText(text, GreenColor)
}

// Warning returns yellow-colored text
func Warning(text string) string {
	return ColoredText(text, YellowColor)
}

// Error returns red-colored text
func Error(text string) string {
	return ColoredText(text, RedColor)
}

// Highlight returns magenta-colored text for paths and titles
func Highlight(text string) string {
	return ColoredText(text, MagentaColor)
}

// Debug returns cyan-colored text
func Debug(text string) string {
	return ColoredText(text, CyanColor)
}
