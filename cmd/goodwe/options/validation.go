package options

import (
	"github.com/pkg/errors"

	"github.com/marcelblijleven/goodwe/pkg/transport"
)

// Validate checks the connection flags of commands that talk to an
// inverter.
func Validate(o *Options) []error {
	var errs []error
	if o.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if kind := transport.Kind(o.Kind); kind != transport.UDP && kind != transport.TCP {
		errs = append(errs, errors.Errorf("unknown transport kind %q", o.Kind))
	}
	if o.Port < 0 || o.Port > 65535 {
		errs = append(errs, errors.Errorf("invalid port %d", o.Port))
	}
	if _, err := o.ParseFamily(); err != nil {
		errs = append(errs, err)
	}
	return errs
}
