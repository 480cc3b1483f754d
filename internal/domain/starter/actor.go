package starter

import "fmt"

// Actor identifies who issued a remote command.
type Actor struct {
	// Hostname is the machine the command came from.
	Hostname string
	// Username is the account that issued the command.
	Username string
}

// Clone returns a copy of the actor, nil-safe.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	clone := *a

	return &clone
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return fmt.Sprintf("%s@%s", a.Username, a.Hostname)
}
