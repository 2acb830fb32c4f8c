package background

import (
	"fmt"
	"sync"
	"time"

	"wiki_server/pkg/logger"
)

// Process :
// Defines a process that can be started with a certain
// repeatability and will spawn a go routine to do so. The
// function to execute is provided as input so that it is
// customizable. The user can also specify whether the
// function should be retried in case of a failure.
//
// The `interval` defines the duration between two calls
// of the function by this process.
//
// The `retryInterval` defines the interval to wait in
// case the `operation` fails. The default value is 1
// second.
//
// The `operation` defines the function to be executed
// by the process.
//
// The `retry` defines whether the operation should be
// rescheduled immediately in case it fails.
//
// The `log` defines a way for this process to notify
// information and failures to the user.
//
// The `module` defines a string identifying the func
// attached to this process to make logs more relevant.
//
// The `lock` allows to protect concurrent accesses
// to some internal variables.
//
// The `running` defines whether or not the main
// processing loop is running.
//
// The `termination` is a channel used to terminate
// the execution of the main processing loop.
//
// The `waiter` allows to wait for this process to
// complete before returning from the `Stop` func.
type Process struct {
	interval      time.Duration
	retryInterval time.Duration
	operation     OperationFunc
	retry         bool
	log           logger.Logger
	module        string

	lock        sync.Mutex
	running     bool
	termination chan bool
	waiter      sync.WaitGroup
}

// OperationFunc :
// Defines an operation that can be associated to a
// process object. It should take no argument and
// return any error along with a status indicating
// whether it could be executed successfully.
type OperationFunc func() (bool, error)

// ErrAlreadyRunning : Indicates that this process is
// already running and cannot be started again.
var ErrAlreadyRunning = fmt.Errorf("unable to start already running process")

// ErrInvalidOperation : Indicates that the operation
// associated to this process is not valid.
var ErrInvalidOperation = fmt.Errorf("invalid operation to start process")

// NewProcess :
// Defines a new process object with the specified
// interval and logger.
//
// The `interval` defines the time interval between
// two consecutive calls to the main process func.
//
// The `log` defines the logger to use to notify
// info and errors.
//
// Returns the built-in object.
func NewProcess(interval time.Duration, log logger.Logger) *Process {
	return &Process{
		interval:      interval,
		retryInterval: 1 * time.Second,
		retry:         false,
		log:           log,

		termination: make(chan bool, 1),
	}
}

// WithModule :
// Assigns a new string as the module name for this
// process.
//
// The `module` defines the name of the module to
// assign to this object.
//
// Returns this process to allow chain calling.
func (p *Process) WithModule(module string) *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.module = module

	return p
}

// WithRetry :
// Defines that this process should try to reschedule
// the operation function if it fails until it succeeds.
//
// Returns this process to allow chain calling.
func (p *Process) WithRetry() *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.retry = true

	return p
}

// WithRetryInterval :
// Defines a new retry interval for the time to wait
// when the main operation fails to execute.
//
// The `interval` defines the retry interval.
//
// Returns this process to allow chain calling.
func (p *Process) WithRetryInterval(interval time.Duration) *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.retryInterval = interval

	return p
}

// WithOperation :
// Defines the core processing function to execute
// when needed.
//
// The `operation` defines the processing function
// to execute at each interval.
//
// Returns this process to allow chain calling.
func (p *Process) WithOperation(operation OperationFunc) *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.operation = operation

	return p
}

// Start :
// Launches the main processing loop of this process in
// a dedicated go routine. The operation is executed at
// each interval until `Stop` is called. In case the
// operation fails and the retry behavior is active it
// is rescheduled after the retry interval instead.
//
// Returns an error in case the process is already
// running or has no operation attached.
func (p *Process) Start() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}
	if p.operation == nil {
		return ErrInvalidOperation
	}

	p.running = true
	p.waiter.Add(1)

	go p.activeLoop()

	return nil
}

// Stop :
// Used to indicate the termination of the active loop
// for this process. It is used to prevent any further
// execution of the main operation callback.
func (p *Process) Stop() {
	// Make sure that this process is started.
	p.lock.Lock()
	defer p.lock.Unlock()

	if !p.running {
		return
	}

	// The process is running, stop it.
	p.termination <- true

	// And wait for the process to terminate.
	p.waiter.Wait()

	p.running = false
}

// activeLoop :
// The main processing loop of this process. It executes
// the operation at each interval, shortening the wait to
// the retry interval whenever the operation fails and
// the retry behavior is active.
func (p *Process) activeLoop() {
	defer p.waiter.Done()

	wait := p.interval

	for {
		select {
		case <-p.termination:
			return
		case <-time.After(wait):
			success, err := p.operation()

			wait = p.interval

			if err != nil {
				p.log.Trace(logger.Error, p.module, fmt.Sprintf("Background operation failed (err: %v)", err))
			}
			if !success && p.retry {
				wait = p.retryInterval
			}
		}
	}
}
