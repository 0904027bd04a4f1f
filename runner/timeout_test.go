package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollTimeoutMerge(t *testing.T) {
	tests := []struct {
		name    string
		pending bool
		engT    time.Duration
		hasEngT bool
		appT    time.Duration
		hasAppT bool
		want    time.Duration
	}{
		{
			name:    "pending sends force a non-blocking poll",
			pending: true,
			want:    0,
		},
		{
			name:    "pending sends win over both timeouts",
			pending: true,
			engT:    time.Second, hasEngT: true,
			appT: time.Second, hasAppT: true,
			want: 0,
		},
		{
			name: "engine timeout alone",
			engT: 250 * time.Millisecond, hasEngT: true,
			want: 250 * time.Millisecond,
		},
		{
			name: "application timeout alone",
			appT: 40 * time.Millisecond, hasAppT: true,
			want: 40 * time.Millisecond,
		},
		{
			name: "both present picks the smaller, engine side",
			engT: 10 * time.Millisecond, hasEngT: true,
			appT: 20 * time.Millisecond, hasAppT: true,
			want: 10 * time.Millisecond,
		},
		{
			name: "both present picks the smaller, application side",
			engT: 30 * time.Millisecond, hasEngT: true,
			appT: 5 * time.Millisecond, hasAppT: true,
			want: 5 * time.Millisecond,
		},
		{
			name: "neither present blocks indefinitely",
			want: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pollTimeout(tt.pending, tt.engT, tt.hasEngT, tt.appT, tt.hasAppT)
			assert.Equal(t, tt.want, got)
		})
	}
}
