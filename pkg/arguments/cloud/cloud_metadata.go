package cloud

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

var infos = []string{
	"ami-id",
	"hostname",
	"instance-id",
	"instance-type",
	"public-hostname",
	"public-ipv4",
}

// Metadata :
// Used to describe common properties which can be retrieved from
// the cloud configuration. Most of the information are retrieved
// from a common service provided by aws cloud configuration. This
// does not extend well to other cloud service providers.
type Metadata struct {
	AmiID          *string `json:"ami-id"`
	Hostname       *string `json:"hostname"`
	InstanceID     *string `json:"instance-id"`
	InstanceType   *string `json:"instance-type"`
	PublicHostname *string `json:"public-hostname"`
	PublicIPv4     *string `json:"public-ipv4"`
}

// InitMetadata :
// Used to connect to the server providing metadata and to retrieve
// all the general information from this server. A short timeout is
// applied so that machines outside the cloud fail fast.
// Returns the computed metadata along with any errors.
func InitMetadata() (Metadata, error) {
	client := http.Client{
		Timeout: 2 * time.Second,
	}

	// Retrieve information from the server.
	parts := []string{}
	for _, info := range infos {
		resp, err := client.Get("http://169.254.169.254/2009-04-04/meta-data/" + info)
		if err != nil {
			continue
		}

		body, err := ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			continue
		}

		parts = append(parts, fmt.Sprintf("%q:%q", info, string(body)))
	}

	// Unmarshal the retrieved information.
	meta := Metadata{}
	err := json.Unmarshal([]byte("{"+strings.Join(parts, ",")+"}"), &meta)
	if err != nil {
		return meta, fmt.Errorf("could not unmarshal metadata retrieved from server (err: %v)", err)
	}

	return meta, nil
}
