package bridge

import (
	"fmt"

	"github.com/sjoeboo/conductor-bridge/internal/config"
)

// Registry holds the ordered list of configured profiles. The first profile
// is the default routing target. Immutable after construction.
type Registry struct {
	profiles []string
}

// NewRegistry builds a registry from the configured profile list. An empty
// list falls back to the single default profile.
func NewRegistry(profiles []string) *Registry {
	if len(profiles) == 0 {
		profiles = []string{config.DefaultProfile}
	}
	owned := make([]string, len(profiles))
	copy(owned, profiles)
	return &Registry{profiles: owned}
}

// Profiles returns the profiles in registry order.
func (r *Registry) Profiles() []string {
	out := make([]string, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Default returns the default profile (first in the list).
func (r *Registry) Default() string {
	return r.profiles[0]
}

// Has reports whether name is a configured profile.
func (r *Registry) Has(name string) bool {
	for _, p := range r.profiles {
		if p == name {
			return true
		}
	}
	return false
}

// Len returns the number of configured profiles.
func (r *Registry) Len() int {
	return len(r.profiles)
}

// ConductorSession returns the conductor session title for a profile.
func ConductorSession(profile string) string {
	return fmt.Sprintf("conductor-%s", profile)
}
