package db

import (
	"fmt"
	"time"

	"github.com/jackc/pgx"
	"github.com/spf13/viper"

	"wiki_server/pkg/background"
	"wiki_server/pkg/logger"
)

// Module name to use in log messages produced by this package.
const module = "db"

// configuration :
// Defines the possible options to define the way this DB
// object should try to connect to the underlying database.
// Common parameters allow to locate the database through a
// network address and provide the connection credentials.
//
// The `host` references the address at which the database
// is hosted.
// The default value is "localhost".
//
// The `port` describes the exposed port to connect to the
// database.
// The default value is 5432.
//
// The `name` defines the name of the database. This value
// should be set as we cannot assume anything regarding its
// value in general.
//
// The `user` defines the role that this object should use
// to connect to the DB.
//
// The `password` defines the password to use to access to
// the DB given the specified username.
//
// The `timeout` separates two successive connection
// attempts to the DB, in seconds.
// The default value is 5 seconds.
//
// The `connectionsPool` defines the number of concurrent
// connections that can be issued on the underlying DB.
// The default value is 5.
type configuration struct {
	host            string
	port            int
	name            string
	user            string
	password        string
	timeout         int
	connectionsPool int
}

// DB :
// Describes a database object providing a wrapper on the pgx
// handler. This is used as a convenience way to hide a part
// of the DB implementation from the rest of the application.
// Compared to the base wrapper it handles a mechanism to try
// connecting to the DB until it comes online, rescheduled
// through a background process.
//
// The `pool` holds a reference on the connections pool. This
// value is not `nil` whenever a connection to the DB has been
// successfully established.
//
// The `healthcheck` drives the periodic verification of the
// connection.
//
// The `logger` allows to notify information and errors.
//
// The `config` describes the connection properties parsed
// from the configuration file.
type DB struct {
	pool        *pgx.ConnPool
	healthcheck *background.Process
	logger      logger.Logger
	config      configuration
}

// parseConfiguration :
// Attempt to parse the configuration provided to this app to
// extract connection parameters to use for the tiddler store.
// It relies on default values in case some values are not set
// and panics if mandatory values cannot be found.
//
// Returns the built-in configuration object.
func parseConfiguration() configuration {
	// Create a default configuration object.
	config := configuration{
		"localhost",
		5432,
		"",
		"",
		"",
		5,
		5,
	}

	// Fetch configuration values from the runtime.
	if viper.IsSet("Store.Host") {
		config.host = viper.GetString("Store.Host")
	}
	if viper.IsSet("Store.Port") {
		config.port = viper.GetInt("Store.Port")
	}
	if viper.IsSet("Store.Name") {
		config.name = viper.GetString("Store.Name")
	}
	if viper.IsSet("Store.User") {
		config.user = viper.GetString("Store.User")
	}
	if viper.IsSet("Store.Password") {
		config.password = viper.GetString("Store.Password")
	}
	if viper.IsSet("Store.Timeout") {
		config.timeout = viper.GetInt("Store.Timeout")
	}
	if viper.IsSet("Store.ConnectionsPool") {
		config.connectionsPool = viper.GetInt("Store.ConnectionsPool")
	}

	// Check whether we could find all the mandatory
	// configuration properties.
	if len(config.name) == 0 {
		panic(fmt.Errorf("invalid store name fetched from configuration \"%s\"", config.name))
	}
	if len(config.user) == 0 {
		panic(fmt.Errorf("invalid store user fetched from configuration \"%s\"", config.user))
	}
	if len(config.password) == 0 {
		panic(fmt.Errorf("invalid store password fetched from configuration"))
	}
	if config.port < 0 || config.port >= 1<<16 {
		panic(fmt.Errorf("invalid store port fetched from configuration %d", config.port))
	}
	if config.connectionsPool <= 0 {
		panic(fmt.Errorf("invalid store connections pool fetched from configuration %d", config.connectionsPool))
	}

	return config
}

// NewPool :
// Performs the creation of a new database object. The created
// object will try to connect to the database described in the
// configuration file until a connection is established. Until
// then, calls to `DBExecute` or `DBQuery` will fail.
//
// The `log` allows to specify the logging device to use.
//
// Returns the created database object.
func NewPool(log logger.Logger) *DB {
	// Parse the configuration for the DB connection.
	config := parseConfiguration()

	// Create the DB object.
	dbase := DB{
		logger: log,
		config: config,
	}

	// Try to connect to the DB.
	dbase.createPoolAttempt()

	// Schedule a process to maintain the connection with the
	// DB healthy in case of a disconnection later on.
	dbase.healthcheck = background.NewProcess(time.Second*time.Duration(config.timeout), log).
		WithModule(module).
		WithOperation(func() (bool, error) {
			dbase.Healthcheck()
			return true, nil
		})

	if err := dbase.healthcheck.Start(); err != nil {
		log.Trace(logger.Error, module, fmt.Sprintf("Could not start DB healthcheck (err: %v)", err))
	}

	// Return the created database.
	return &dbase
}

// createPoolAttempt :
// Used to try to connect to the database described in the
// configuration file. The connection is assigned to the
// internal attribute only if it has succeeded.
//
// Returns `true` if the attempt succeeded and `false`
// otherwise.
func (dbase *DB) createPoolAttempt() bool {
	config := dbase.config
	dbase.logger.Trace(logger.Info, module, fmt.Sprintf("Attempting to connect to \"%s\" (user: \"%s\", host: \"%s:%d\")", config.name, config.user, config.host, config.port))

	// Try to connect to the database.
	pool, err := pgx.NewConnPool(pgx.ConnPoolConfig{
		ConnConfig: pgx.ConnConfig{
			Host:     config.host,
			Database: config.name,
			Port:     uint16(config.port),
			User:     config.user,
			Password: config.password,
		},
		MaxConnections: config.connectionsPool,
		AcquireTimeout: 0,
	})

	// Check whether the connection was successful.
	if err != nil {
		dbase.logger.Trace(logger.Warning, module, fmt.Sprintf("Failed to connect to store \"%s\" (err: %v)", config.name, err))
		return false
	}

	dbase.logger.Trace(logger.Info, module, fmt.Sprintf("Connection to store \"%s\" with username \"%s\" succeeded", config.name, config.user))

	dbase.pool = pool

	return true
}

// Healthcheck :
// Used to check the health of the connection to the DB. In
// case the connection is found not to be healthy, a new
// attempt is scheduled immediately. A lost connection is
// detected through the pool's current connection count
// dropping to zero after a failed request.
func (dbase *DB) Healthcheck() {
	if dbase.pool == nil || dbase.pool.Stat().CurrentConnections == 0 {
		dbase.createPoolAttempt()
	}
}

// Stop :
// Terminates the background healthcheck and releases the
// connections pool.
func (dbase *DB) Stop() {
	if dbase.healthcheck != nil {
		dbase.healthcheck.Stop()
	}
	if dbase.pool != nil {
		dbase.pool.Close()
	}
}

// DBExecute :
// Attempts to perform the input query with the specified
// arguments on the internal database connection. If the
// connection has not yet been established with the DB an
// error is returned.
//
// The `query` represents the request to execute.
//
// The `args` are arguments to pass to the query.
//
// Returns the result of the query along with any errors.
func (dbase *DB) DBExecute(query string, args ...interface{}) (pgx.CommandTag, error) {
	if dbase.pool == nil {
		return "", fmt.Errorf("cannot execute query on store \"%s\" (err: %w)", dbase.config.name, ErrInvalidDB)
	}

	tag, err := dbase.pool.Exec(query, args...)

	return tag, formatDBError(err)
}

// DBQuery :
// Attempts to execute the input query with the specified
// arguments on the internal database connection. This method
// is very similar to `DBExecute` but fetches information from
// the DB rather than modifying it.
//
// The `query` represents the request to execute.
//
// The `args` are arguments to pass to the query.
//
// Returns the rows fetched from the DB along with any errors.
func (dbase *DB) DBQuery(query string, args ...interface{}) (*pgx.Rows, error) {
	if dbase.pool == nil {
		return nil, fmt.Errorf("cannot execute query on store \"%s\" (err: %w)", dbase.config.name, ErrInvalidDB)
	}

	rows, err := dbase.pool.Query(query, args...)

	return rows, formatDBError(err)
}
