package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTarget(t *testing.T) {
	reg := NewRegistry([]string{"default", "work"})

	tests := []struct {
		name string
		text string
		want Target
	}{
		{
			name: "slash p form",
			text: "/p work hello",
			want: Target{Profile: "work", Explicit: true, Text: "hello"},
		},
		{
			name: "slash p with multiword message",
			text: "/p work deploy the thing",
			want: Target{Profile: "work", Explicit: true, Text: "deploy the thing"},
		},
		{
			name: "slash p bare profile",
			text: "/p work",
			want: Target{Profile: "work", Explicit: true, Text: ""},
		},
		{
			name: "colon form",
			text: "work: ping",
			want: Target{Profile: "work", Explicit: true, Text: "ping"},
		},
		{
			name: "colon form no space",
			text: "work:ping",
			want: Target{Profile: "work", Explicit: true, Text: "ping"},
		},
		{
			name: "no prefix",
			text: "hello",
			want: Target{Text: "hello"},
		},
		{
			name: "unknown profile in slash p",
			text: "/p unknown hi",
			want: Target{Text: "/p unknown hi"},
		},
		{
			name: "unknown profile colon form",
			text: "other: hi",
			want: Target{Text: "other: hi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTarget(tt.text, reg))
		})
	}
}

func TestResolveTarget_RegistryOrderWins(t *testing.T) {
	// Matching is first-in-registry-order, not longest-match: with a
	// profile name that extends another, the earlier prefix wins.
	reg := NewRegistry([]string{"ops", "ops:eu"})
	got := ResolveTarget("ops:eu ping", reg)
	assert.Equal(t, "ops", got.Profile)
	assert.Equal(t, "eu ping", got.Text)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry([]string{"a", "b"})
	assert.Equal(t, "a", reg.Default())
	assert.True(t, reg.Has("b"))
	assert.False(t, reg.Has("c"))
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"a", "b"}, reg.Profiles())
}

func TestRegistry_EmptyFallsBackToDefault(t *testing.T) {
	reg := NewRegistry(nil)
	assert.Equal(t, "default", reg.Default())
	assert.Equal(t, 1, reg.Len())
}

func TestConductorSession(t *testing.T) {
	assert.Equal(t, "conductor-work", ConductorSession("work"))
}
