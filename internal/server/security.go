// Package server provides the listeners the HTTP and gRPC servers run on.
package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// alpnProtocols are offered on TLS listeners. gRPC clients require "h2".
var alpnProtocols = []string{"h2", "http/1.1"}

// TLSListener opens TLS listeners from a certificate and key on disk.
type TLSListener struct {
	certFileName       string
	privateKeyFileName string
}

var _ model.SecurityLayer = (*TLSListener)(nil)

func NewTLSListener(certFileName, privateKeyFileName string) *TLSListener {
	return &TLSListener{
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
	}
}

// Listen loads the key pair on every call so a rotated certificate is picked
// up on restart of the listener.
func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(l.certFileName, l.privateKeyFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return tls.Listen(protocol, addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   alpnProtocols,
	})
}

// PlainListener opens unencrypted listeners.
type PlainListener struct{}

var _ model.SecurityLayer = (*PlainListener)(nil)

func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	return net.Listen(protocol, addr)
}
