package logger

import "strings"

// Severity :
// Describes the various available log severities that can be
// used in conjunction with the logger interface.
type Severity int

const (
	Verbose Severity = iota
	Debug
	Info
	Notice
	Warning
	Error
	Critical
	Fatal
)

// Name :
// Provides a string value from the input level identifier. It
// is used when actually producing the logs for a given level.
//
// Returns the string representing the input log level.
func (s Severity) Name() string {
	return [...]string{
		"verbose",
		"debug",
		"info",
		"notice",
		"warning",
		"error",
		"critical",
		"fatal",
	}[s]
}

// Color :
// Provides a color value representing the severity. This is
// used as a visual way to distinguish between severities when
// displayed in a logging device.
//
// Returns the color to use to display this severity.
func (s Severity) Color() Color {
	return [...]Color{
		Grey,
		Blue,
		Green,
		Cyan,
		Yellow,
		Red,
		Red,
		Red,
	}[s]
}

// String :
// Provides a complete string representing the input severity
// including the color formatting matching its importance.
func (s Severity) String() string {
	return FormatWithBrackets(s.Name(), s.Color())
}

// fromString :
// Converts the input string into the corresponding severity
// value. In case the input does not correspond to a known
// value a `verbose` severity is returned. The case of the
// input string is not relevant.
//
// The `level` represents the string to convert.
//
// Returns the severity associated to the input string.
func fromString(level string) Severity {
	switch strings.ToLower(level) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "notice":
		return Notice
	case "warning":
		return Warning
	case "error":
		return Error
	case "critical":
		return Critical
	case "fatal":
		return Fatal
	case "verbose":
		fallthrough
	default:
		// Assume verbose by default.
		return Verbose
	}
}
