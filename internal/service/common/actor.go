//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"os/user"

	"github.com/oshokin/sprint-start/internal/domain/starter"
)

var errUnknownUser = errors.New("unable to determine current user")

// DetectActor returns the host and user recorded with remote start and reset
// requests.
func DetectActor() (*starter.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	username, err := currentUsername()
	if err != nil {
		return nil, err
	}

	return &starter.Actor{
		Hostname: hostname,
		Username: username,
	}, nil
}

// currentUsername falls back to the environment when the user database has no
// entry for the process, as in minimal containers.
func currentUsername() (string, error) {
	u, err := user.Current()
	if err == nil && u.Username != "" {
		return u.Username, nil
	}

	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if name := os.Getenv(key); name != "" {
			return name, nil
		}
	}

	if err != nil {
		return "", fmt.Errorf("%w: %w", errUnknownUser, err)
	}

	return "", errUnknownUser
}
