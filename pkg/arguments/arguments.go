package arguments

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"wiki_server/pkg/arguments/cloud"
)

// AppMetadata :
// Describes some properties used to identify the current instance
// of the application. This includes data about the machine that is
// executing it but also information about its behavior (such as
// the environment it was started in).
// Most of these information will be used during the logging process
// to provide some context to messages and distinguish among running
// instances of the application in case several are available.
//
// The `PublicIPv4` corresponds to the IP address of the machine
// executing the server and persists through a restart. It allows
// to easily connect to a specific machine based on the logs.
// The default value is "localhost".
//
// The `InstanceID` describes an identifier of the current instance
// of the server. This value is generated at runtime and is meant
// to be unique and change upon restart of the application on the
// same machine.
//
// The `Environment` is a string describing the configuration used
// to start this application. Typical values include `development`,
// `production`, etc.
// The default value is "unknown".
type AppMetadata struct {
	PublicIPv4  string `json:"public_ipv4"`
	InstanceID  string `json:"instance_id"`
	Environment string `json:"environment"`
}

// Parse :
// Used to parse the app arguments and produce the corresponding
// data. This initializes the configuration runtime from the input
// file so that the rest of the application can fetch its settings
// and gathers information about the machine executing the server
// to provide context in log messages.
//
// The `configFile` is a string describing the configuration file
// provided by the runtime of the application. This is the name of
// the configuration file without the extension.
//
// This function returns the built-in application's properties.
func Parse(configFile string) AppMetadata {
	// Assign the extra path to use to reach the configuration file.
	viper.SetEnvPrefix("ENV")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	// Put the configuration file in the config structure
	// name of config file (without extension).
	viper.SetConfigName(configFile)

	// Optionally look for config in the working directory and in
	// the common `data/config` directory.
	viper.AddConfigPath(".")
	viper.AddConfigPath("data/config")

	// Find and read the config file.
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("could not parse input configuration \"%s\" (err: %v)", configFile, err))
	}

	// Create the default application properties.
	metadata := AppMetadata{
		"localhost",
		uuid.New().String(),
		"unknown",
	}

	if len(configFile) > 0 {
		metadata.Environment = configFile
	}

	// Optionally enrich the metadata with information fetched
	// from the cloud provider hosting the machine.
	if viper.GetBool("App.CloudMetadata") {
		cloudMetadata, err := cloud.InitMetadata()
		if err == nil && cloudMetadata.PublicIPv4 != nil {
			metadata.PublicIPv4 = *cloudMetadata.PublicIPv4
		}
	}

	// Return the built-in configuration object.
	return metadata
}
