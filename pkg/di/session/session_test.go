package session_di

import (
	"testing"

	"github.com/lintang-b-s/tm-search/pkg/util"

	"github.com/stretchr/testify/assert"
)

func TestParseUsers(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    map[string]string
		wantErr bool
	}{
		{name: "list", entries: []string{"alice:secret", "bob:pw"}, want: map[string]string{"alice": "secret", "bob": "pw"}},
		{name: "comma separated", entries: []string{"alice:secret, bob:pw"}, want: map[string]string{"alice": "secret", "bob": "pw"}},
		{name: "password with colon", entries: []string{"alice:a:b"}, want: map[string]string{"alice": "a:b"}},
		{name: "missing password", entries: []string{"alice"}, wantErr: true},
		{name: "empty", entries: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUsers(tt.entries)
			if tt.wantErr {
				assert.ErrorIs(t, err, util.ErrConfiguration)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
