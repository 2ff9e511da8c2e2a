package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	s := New()
	RegisterRelayDefaults(s)
	v, ok := s.Get("relay.network.password_hash_iterations")
	require.True(t, ok)
	assert.Equal(t, "100000", v)
}

func TestSetUnknownOptionErrors(t *testing.T) {
	s := New()
	err := s.Set("relay.network.nope", "x")
	assert.Error(t, err)
}

func TestLoadINIOverridesDefault(t *testing.T) {
	s := New()
	RegisterRelayDefaults(s)
	input := "[network]\npassword = hunter2\nconnection_timeout = 10\n"
	require.NoError(t, LoadINI(s, "relay", strings.NewReader(input)))

	v, _ := s.Get("relay.network.password")
	assert.Equal(t, "hunter2", v)
	assert.Equal(t, 10, s.GetInt("relay.network.connection_timeout", 60))
}

func TestLoadINITolerantOfUnknownOption(t *testing.T) {
	s := New()
	input := "[network]\nfuture_option = whatever\n"
	assert.NoError(t, LoadINI(s, "relay", strings.NewReader(input)))
}

func TestSectionDump(t *testing.T) {
	s := New()
	RegisterProxy(s, "work")
	section := s.Section("weechat", "proxy")
	assert.Contains(t, section, "weechat.proxy.work.type")
}

func TestWriteINIRoundTrip(t *testing.T) {
	s := New()
	RegisterRelayDefaults(s)
	require.NoError(t, s.Set("relay.network.password", "secret"))

	var buf strings.Builder
	require.NoError(t, WriteINI(s, "relay", &buf))
	assert.Contains(t, buf.String(), "password = \"secret\"")
}
