package netutil

import (
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("parse failure"), want: false},
		{name: "timeout", err: timeoutErr{}, want: true},
		{name: "dial error", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "read error", err: &net.OpError{Op: "read", Err: errors.New("reset")}, want: false},
		{name: "url wrapped dial", err: &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}, want: true},
		{name: "url wrapped plain", err: &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: errors.New("bad response")}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRetry(tt.err))
		})
	}
}
