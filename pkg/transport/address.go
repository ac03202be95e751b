package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Default ports exposed by the inverter communication modules. The
// WiFi/LAN dongle answers raw datagrams on 8899, dongles with the
// Modbus TCP firmware listen on 502.
const (
	DefaultPortUDP = 8899
	DefaultPortTCP = 502
)

type Kind string

const (
	UDP Kind = "udp"
	TCP Kind = "tcp"
)

// Address identifies an inverter endpoint on the local network.
type Address struct {
	Host string
	Port int
	Kind Kind
}

// NewAddress infers the transport kind from the port: 502 selects TCP,
// anything else the datagram protocol.
func NewAddress(host string, port int) Address {
	kind := UDP
	if port == DefaultPortTCP {
		kind = TCP
	}
	return Address{Host: host, Port: port, Kind: kind}
}

// ParseAddress accepts "host", "host:port" or "host:port:kind" forms.
func ParseAddress(s string) (Address, error) {
	host, rest, found := strings.Cut(s, ":")
	if host == "" {
		return Address{}, errors.Errorf("invalid address %q", s)
	}
	if !found {
		return NewAddress(host, DefaultPortUDP), nil
	}
	portStr, kindStr, found := strings.Cut(rest, ":")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Address{}, errors.Errorf("invalid port in address %q", s)
	}
	if !found {
		return NewAddress(host, port), nil
	}
	switch Kind(kindStr) {
	case UDP, TCP:
		return Address{Host: host, Port: port, Kind: Kind(kindStr)}, nil
	default:
		return Address{}, errors.Errorf("invalid transport kind in address %q", s)
	}
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%d/%s", a.Host, a.Port, a.Kind)
}

func (a Address) hostPort() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}
