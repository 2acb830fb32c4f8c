package logger

// Logger :
// Describes a common interface used for logging purposes.
// A single method is needed to allow the logging of some
// messages based on a severity, the module producing the
// message and its content.
type Logger interface {
	Trace(level Severity, module string, message string)
}
