package config

// RegisterRelayDefaults registers every option the relay core and
// network core consult.
func RegisterRelayDefaults(s *Store) {
	s.Register("relay", "network", "password", "")
	s.Register("relay", "network", "password_hash_algo", "sha256,sha512,pbkdf2+sha256,pbkdf2+sha512")
	s.Register("relay", "network", "password_hash_iterations", "100000")
	s.Register("relay", "network", "totp_secret", "")
	s.Register("relay", "network", "connection_timeout", "60")
	s.Register("relay", "network", "gnutls_handshake_timeout", "30")
	s.Register("relay", "network", "commands", "")
	s.Register("relay", "look", "auto_open_buffer", "on")
}

// RegisterProxy registers the six fields a named weechat.proxy.<name>.*
// proxy record exposes.
func RegisterProxy(s *Store, name string) {
	s.Register("weechat", "proxy", name+".type", "http")
	s.Register("weechat", "proxy", name+".ipv6", "off")
	s.Register("weechat", "proxy", name+".address", "")
	s.Register("weechat", "proxy", name+".port", "0")
	s.Register("weechat", "proxy", name+".username", "")
	s.Register("weechat", "proxy", name+".password", "")
}
