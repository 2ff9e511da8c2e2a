package netconn

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net"
	"net/textproto"
)

// httpConnect speaks a single CONNECT request over conn, matching
// network_pass_httpproxy in core-network.c: a plain HTTP/1.0 CONNECT with
// an optional Proxy-Authorization header, expecting a "200" status line
// back before the tunnel is considered open.
func httpConnect(conn net.Conn, address string, port int, username, password string) error {
	req := fmt.Sprintf("CONNECT %s:%d HTTP/1.0\r\nHost: %s:%d\r\n", address, port, address, port)
	if username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		req += "Proxy-Authorization: Basic " + auth + "\r\n"
	}
	req += "\r\n"
	if _, err := conn.Write([]byte(req)); err != nil {
		return fmt.Errorf("netconn: http connect write: %w", err)
	}

	reader := textproto.NewReader(bufio.NewReader(conn))
	line, err := reader.ReadLine()
	if err != nil {
		return fmt.Errorf("netconn: http connect read status: %w", err)
	}
	var httpVersion string
	var statusCode int
	if _, err := fmt.Sscanf(line, "%s %d", &httpVersion, &statusCode); err != nil {
		return fmt.Errorf("netconn: malformed proxy response %q", line)
	}
	if statusCode != 200 {
		return fmt.Errorf("netconn: proxy refused CONNECT: %q", line)
	}
	// drain headers until the blank line
	for {
		l, err := reader.ReadLine()
		if err != nil {
			return fmt.Errorf("netconn: http connect read headers: %w", err)
		}
		if l == "" {
			break
		}
	}
	return nil
}

// socks4Connect implements the SOCKS4 handshake (network_pass_socks4proxy):
// version=4, command=1 (connect), big-endian port, IPv4 address, then the
// username terminated by a NUL byte. SOCKS4 has no hostname resolution of
// its own, so address must already be an IPv4 literal.
func socks4Connect(conn net.Conn, address string, port int, username string) error {
	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("netconn: socks4 requires an IPv4 address, got %q", address)
	}
	ip4 := ip.To4()

	req := make([]byte, 0, 9+len(username))
	req = append(req, 4, 1)
	portBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(portBytes, uint16(port))
	req = append(req, portBytes...)
	req = append(req, ip4...)
	req = append(req, []byte(username)...)
	req = append(req, 0)

	if _, err := conn.Write(req); err != nil {
		return fmt.Errorf("netconn: socks4 write: %w", err)
	}

	reply := make([]byte, 8)
	if _, err := readFull(conn, reply); err != nil {
		return fmt.Errorf("netconn: socks4 read reply: %w", err)
	}
	const grantedStatus = 0x5a
	if reply[1] != grantedStatus {
		return fmt.Errorf("netconn: socks4 request rejected, status=0x%02x", reply[1])
	}
	return nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
