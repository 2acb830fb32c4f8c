package logger

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// configuration :
// Provides a way to configure the way logs are displayed both
// in terms of level and in terms of the machine executing the
// logger. The logger is initialized with default values which
// can be overriden through the configuration file.
//
// The `AppName` describes a string for the name of the app
// using the logger.
// The default value is "wiki_server".
//
// The `Environment` allows to specify which configuration is
// used by the application executing the logger. Typical values
// include `production`, `development`, etc.
// The default value is "development".
//
// The `ForceLocal` allows to make sure that the instance ID
// assigned to this logger will be "local" no matter the value
// provided by the runtime. It makes development logs clearer.
// The default value is `false`.
//
// The `Level` is a string representing the minimum level of a
// log message in order for it to be displayed. It allows to
// suppress debug messages in production environments so that
// important messages get their deserved visibility.
// The default value is "info".
//
// The `Buffer` allows to specify the size of the internal
// buffer holding log messages. The logger does not directly
// output messages to the standard output but stores them in
// a channel with a predefined size so that bursts of messages
// can be absorbed without blocking the callers.
// The default value is 500.
type configuration struct {
	AppName     string
	Environment string
	ForceLocal  bool
	Level       string
	Buffer      int
}

// traceMessage :
// Describes a message to be enqueued by the logger. It contains
// the needed information to be displayed such as its severity,
// the module producing it and its content.
type traceMessage struct {
	level   Severity
	module  string
	content string
}

// StdLogger :
// Describes the logger structure used to perform logging to the
// standard output. Messages are enqueued in an internal channel
// and dumped by a dedicated routine so that callers are not
// blocked while the underlying display system performs the log.
//
// The `config` holds the settings to apply to input messages
// before displaying them.
//
// The `instanceID` represents the name of the instance of the
// application running the logger. It is updated each time the
// application restarts which allows to detect crashes on a
// single machine or various apps running on a single machine.
//
// The `publicIP` represents the public IP of the machine as a
// string. In case no public IP can be determined a "localhost"
// value is used as default.
//
// The `minLevel` defines the minimum severity for a message to
// be displayed, as parsed from the configuration.
//
// The `logChannel` receives the trace messages from the rest
// of the application before they reach the logging device.
//
// The `endChannel` allows to terminate the active loop which
// transmits messages from the `logChannel` to the device.
//
// The `closed` value indicates whether the logger has been
// terminated. It is protected by the `locker` and mostly used
// to ensure that the logger displays all messages posted up
// until the `Release` method is called.
//
// The `waiter` allows to wait for the proper termination of
// the logging routine.
type StdLogger struct {
	config     configuration
	instanceID string
	publicIP   string
	minLevel   Severity
	logChannel chan traceMessage
	endChannel chan bool
	closed     bool
	locker     sync.Mutex
	waiter     sync.WaitGroup
}

// parseConfiguration :
// Used to retrieve the parameters to apply to the logger from
// the configuration file. A default configuration is provided
// to work in most cases.
//
// Returns the arguments parsed from the configuration file.
func parseConfiguration() configuration {
	// Provide a default configuration.
	config := configuration{
		"wiki_server",
		"development",
		false,
		"info",
		500,
	}

	// Parse the description file if any.
	if viper.IsSet("Logger.Name") {
		config.AppName = viper.GetString("Logger.Name")
	}
	if viper.IsSet("Logger.Environment") {
		config.Environment = viper.GetString("Logger.Environment")
	}
	if viper.IsSet("Logger.ForceLocal") {
		config.ForceLocal = viper.GetBool("Logger.ForceLocal")
	}
	if viper.IsSet("Logger.Level") {
		config.Level = viper.GetString("Logger.Level")
	}
	if viper.IsSet("Logger.Buffer") {
		config.Buffer = viper.GetInt("Logger.Buffer")
	}

	// All is well.
	return config
}

// NewStdLogger :
// Used to create a new logger with the specified instance name
// and public IP. The created logger will parse the configuration
// file provided by the environment and adapt its settings right
// away.
//
// The `instanceID` might be empty, in which case the "local"
// identifier is used. Otherwise it corresponds to a unique
// identifier of the instance running the logger.
//
// The `publicIP` provides the IP to use to target the machine
// executing the logger. An empty value defaults to "localhost".
//
// Returns the produced logger.
func NewStdLogger(instanceID string, publicIP string) *StdLogger {
	// Retrieve the configuration.
	config := parseConfiguration()

	// Create the logger.
	log := StdLogger{
		config:     config,
		instanceID: instanceID,
		publicIP:   publicIP,
		minLevel:   fromString(config.Level),
		logChannel: make(chan traceMessage, config.Buffer),
		endChannel: make(chan bool),
	}

	// Update the public IP and instance ID in case no values
	// are provided.
	if len(log.instanceID) == 0 || config.ForceLocal {
		log.instanceID = "local"
	}
	if len(log.publicIP) == 0 {
		log.publicIP = "localhost"
	}

	// Start logging.
	log.waiter.Add(1)
	go log.performLogging()

	return &log
}

// Release :
// Used to perform the stopping of the active loop meant to
// handle logging to the underlying device. It will block until
// the last posted logs have been dumped.
func (log *StdLogger) Release() {
	// Request the termination of the active loop.
	log.endChannel <- false

	// Close the log channel.
	log.locker.Lock()
	log.closed = true
	close(log.logChannel)
	log.locker.Unlock()

	// Wait for the routine termination.
	log.waiter.Wait()
}

// Trace :
// Used to perform the log of the input message with the given
// level and module. The message is not directly transmitted to
// the logging device but placed in the internal buffer so that
// it can be processed by the active logger loop.
// This function does not block the caller as long as the buffer
// is not full.
//
// The `level` describes the severity of the message to log.
//
// The `module` describes the component producing the message.
//
// The `message` describes the content of the message to log.
func (log *StdLogger) Trace(level Severity, module string, message string) {
	// Filter messages below the configured level.
	if level < log.minLevel {
		return
	}

	trace := traceMessage{
		level,
		module,
		message,
	}

	// Enqueue the trace to the internal channel if it is not
	// closed yet.
	log.locker.Lock()
	defer log.locker.Unlock()
	if !log.closed {
		log.logChannel <- trace
	}
}

// performLogging :
// Used to perform logging. This method is meant to be launched
// as a go routine and will poll the internal trace channel to
// perform logging.
func (log *StdLogger) performLogging() {
	// Until we request stop, we must continue logging.
	keepLogging := true

	for keepLogging {
		select {
		case keepLogging = <-log.endChannel:
		case trace := <-log.logChannel:
			// A new trace is available, log it.
			log.performSingleLog(trace)
		}
	}

	// Iterate over the remaining messages of the log channel.
	for trace := range log.logChannel {
		log.performSingleLog(trace)
	}

	// Set the routine as done.
	log.waiter.Done()
}

// performSingleLog :
// Used to perform a single log for the input trace. This method
// is called from the active logging loop and formats the input
// message with some context about the instance producing it.
//
// The `trace` describes the message to log.
func (log *StdLogger) performSingleLog(trace traceMessage) {
	out := FormatWithBrackets(log.config.AppName, Magenta)
	out += " " + FormatWithBrackets(log.instanceID, Magenta)
	out += " " + FormatWithNoBrackets(time.Now().Format("2006-01-02 15:04:05"), Magenta)
	out += " " + trace.level.String()

	if len(trace.module) > 0 {
		out += " " + FormatWithBrackets(trace.module, Cyan)
	}

	out += " " + trace.content

	fmt.Println(out)
}
