// Package identity derives the (host, user) pair that scopes every tracked
// commit and claim to the clone that issued it.
package identity

import "os"

// Identity is the primary key distinguishing "mine" from "someone else's"
// records in a store. It is stable across process runs on the same clone.
type Identity struct {
	Host string
	User string
}

// Equal reports whether two identities refer to the same clone.
func (id Identity) Equal(other Identity) bool {
	return id.Host == other.Host && id.User == other.User
}

// Resolver derives the identity for the current process, sourcing the host
// from the OS and the user from Git configuration.
type Resolver struct {
	// GitUserEmail returns the value of `git config user.email` for the
	// managed repository. Injected so callers can supply a probe-backed
	// implementation without this package depending on the probe.
	GitUserEmail func() (string, error)

	// Hostname returns the local hostname. Defaults to os.Hostname.
	Hostname func() (string, error)
}

// Resolve computes the current clone's identity. If the Git user email
// cannot be determined, the OS user is used as a fallback so gitalong still
// functions on a repository without a configured author identity.
func (r Resolver) Resolve() (Identity, error) {
	hostname := r.Hostname
	if hostname == nil {
		hostname = os.Hostname
	}

	host, err := hostname()
	if err != nil {
		return Identity{}, err
	}

	user := ""
	if r.GitUserEmail != nil {
		if email, err := r.GitUserEmail(); err == nil && email != "" {
			user = email
		}
	}
	if user == "" {
		if osUser := os.Getenv("USER"); osUser != "" {
			user = osUser
		} else {
			user = os.Getenv("USERNAME")
		}
	}

	return Identity{Host: host, User: user}, nil
}
