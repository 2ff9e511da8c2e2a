package netconn

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	raw := EncodeHeader(StatusProxyError, "boom")
	status, msg, n, err := DecodeHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, StatusProxyError, status)
	assert.Equal(t, "boom", msg)
	assert.Equal(t, len(raw), n)
}

func TestDecodeHeaderTooShort(t *testing.T) {
	_, _, _, err := DecodeHeader("12")
	assert.Error(t, err)
}

func TestSocks4ConnectGranted(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		buf := make([]byte, 64)
		n, _ := server.Read(buf)
		_ = n
		server.Write([]byte{0, 0x5a, 0, 0, 0, 0, 0, 0})
	}()

	err := socks4Connect(client, "127.0.0.1", 6667, "relay")
	assert.NoError(t, err)
}

func TestSocks4ConnectRejected(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		buf := make([]byte, 64)
		server.Read(buf)
		server.Write([]byte{0, 0x5b, 0, 0, 0, 0, 0, 0})
	}()

	err := socks4Connect(client, "127.0.0.1", 6667, "relay")
	assert.Error(t, err)
}

func TestHTTPConnectSuccess(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		reader := bufio.NewReader(server)
		for {
			line, err := reader.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
		}
		server.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n"))
	}()

	err := httpConnect(client, "irc.example.org", 6697, "", "")
	assert.NoError(t, err)
}

func TestHTTPConnectRefused(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		reader := bufio.NewReader(server)
		for {
			line, err := reader.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
		}
		server.Write([]byte("HTTP/1.1 403 Forbidden\r\n\r\n"))
	}()

	err := httpConnect(client, "irc.example.org", 6697, "", "")
	assert.Error(t, err)
}

func TestConnectDirectSucceeds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err == nil {
			c.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results := Connect(ctx, Options{Address: addr.IP.String(), Port: addr.Port, ConnectTimeout: 2 * time.Second})
	res := <-results
	require.NoError(t, res.Err)
	assert.Equal(t, StatusOK, res.Status)
	res.Conn.Close()
}

func TestConnectAddressNotFound(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	results := Connect(ctx, Options{Address: "this-host-should-not-resolve.invalid", Port: 80, ConnectTimeout: time.Second})
	res := <-results
	assert.Error(t, res.Err)
}
