package options

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/marcelblijleven/goodwe/pkg/catalog"
	"github.com/marcelblijleven/goodwe/pkg/transport"
)

// Options are the connection flags shared by every inverter command.
type Options struct {
	Host    string        `json:"host"`
	Port    int           `json:"port"`
	Kind    string        `json:"kind"`
	Family  string        `json:"family"`
	Timeout time.Duration `json:"timeout"`
	Retries int           `json:"retries"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Kind:    string(transport.UDP),
		Timeout: transport.DefaultTimeout,
		Retries: transport.DefaultRetries,
	}
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Host, "host", "H", o.Host, "Inverter IP address or hostname")
	fs.IntVarP(&o.Port, "port", "P", o.Port, "Inverter port, 8899 for UDP and 502 for Modbus TCP by default")
	fs.StringVar(&o.Kind, "kind", o.Kind, "Transport kind, udp or tcp")
	fs.StringVarP(&o.Family, "family", "f", o.Family, "Inverter family (ET, ES or DT), detected when empty")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Time to wait for a response before a request is resent")
	fs.IntVar(&o.Retries, "retries", o.Retries, "Number of requests sent before giving up")
}

// Address builds the transport address from the flags.
func (o *Options) Address() transport.Address {
	kind := transport.Kind(o.Kind)
	port := o.Port
	if port == 0 {
		port = transport.DefaultPortUDP
		if kind == transport.TCP {
			port = transport.DefaultPortTCP
		}
	}
	return transport.Address{Host: o.Host, Port: port, Kind: kind}
}

// ParseFamily maps the family flag to a catalog family, empty means
// detect on connect.
func (o *Options) ParseFamily() (catalog.Family, error) {
	if o.Family == "" {
		return "", nil
	}
	return catalog.ParseFamily(o.Family)
}

func (o *Options) TransportOptions() transport.Options {
	return transport.Options{Timeout: o.Timeout, Retries: o.Retries}
}
