package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectString(t *testing.T) {
	assert.Equal(t, "user:u-1", UserSubject("u-1").String())
	assert.Equal(t, "client:c-1", ClientSubject("c-1").String())
	assert.False(t, UserSubject("u-1").IsClient())
	assert.True(t, ClientSubject("c-1").IsClient())
}

func TestParseSubject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Subject
		wantErr bool
	}{
		{name: "user", raw: "user:42", want: UserSubject("42")},
		{name: "client", raw: "client:abc", want: ClientSubject("abc")},
		{name: "id with colon", raw: "user:a:b", want: UserSubject("a:b")},
		{name: "no separator", raw: "user", wantErr: true},
		{name: "empty id", raw: "user:", wantErr: true},
		{name: "unknown kind", raw: "robot:1", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubject(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSubjectRoundTrip(t *testing.T) {
	for _, s := range []Subject{UserSubject("u-1"), ClientSubject("c-9")} {
		got, err := ParseSubject(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}
