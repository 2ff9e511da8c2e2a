// Package proxy models a named weechat.proxy.<name> record and the proxy
// kinds the network core speaks over it: HTTP CONNECT, SOCKS4 and SOCKS5.
// The handshakes themselves are implemented in internal/netconn.
package proxy

import (
	"fmt"

	"weechat-relay/internal/config"
	"weechat-relay/internal/eval"
)

// Kind identifies the proxy protocol.
type Kind string

const (
	KindHTTP   Kind = "http"
	KindSocks4 Kind = "socks4"
	KindSocks5 Kind = "socks5"
)

// Record is one weechat.proxy.<name> entry. Username and Password are kept
// as raw, unevaluated config strings — Credentials() runs them through the
// expression evaluator on demand so ${sec.data.*} and other references
// resolve against the current secured-data store rather than being baked
// in at load time.
type Record struct {
	Name     string
	Type     Kind
	IPv6     bool
	Address  string
	Port     int
	username string
	password string
}

// FromStore builds a Record from the six weechat.proxy.<name>.* options.
func FromStore(s *config.Store, name string) (*Record, error) {
	prefix := "weechat.proxy." + name + "."
	typ, ok := s.Get(prefix + "type")
	if !ok {
		return nil, fmt.Errorf("proxy: unknown proxy %q", name)
	}
	addr, _ := s.Get(prefix + "address")
	user, _ := s.Get(prefix + "username")
	pass, _ := s.Get(prefix + "password")
	return &Record{
		Name:     name,
		Type:     Kind(typ),
		IPv6:     s.GetBool(prefix+"ipv6", false),
		Address:  addr,
		Port:     s.GetInt(prefix+"port", 0),
		username: user,
		password: pass,
	}, nil
}

// Credentials evaluates the stored username/password against lookup,
// resolving ${sec.data.*} and any other expression before a handshake
// uses them.
func (r *Record) Credentials(lookup eval.Lookup) (username, password string, err error) {
	ctx := eval.NewContext(nil, nil, nil, lookup)
	username, err = eval.Evaluate(r.username, ctx, eval.Options{})
	if err != nil {
		return "", "", err
	}
	password, err = eval.Evaluate(r.password, ctx, eval.Options{})
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}
