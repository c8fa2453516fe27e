package model

import (
	"context"
	"net"
)

// SecurityLayer produces a plain or TLS-wrapped listener.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a network server with a graceful lifecycle.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
