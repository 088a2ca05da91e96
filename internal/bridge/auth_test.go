package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorized(t *testing.T) {
	tests := []struct {
		name    string
		allowed []int64
		id      int64
		want    bool
	}{
		{"exact member", []int64{42}, 42, true},
		{"not a member", []int64{42}, 43, false},
		{"multiple allowed", []int64{7, 9, 42}, 9, true},
		{"empty list authorizes everyone", nil, 12345, true},
		{"empty list authorizes zero identity", nil, 0, true},
		{"zero identity not in list", []int64{42}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorized(tt.allowed, tt.id))
		})
	}
}
