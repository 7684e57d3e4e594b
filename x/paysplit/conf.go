package paysplit

import (
	"github.com/iov-one/tipjar"
	"github.com/iov-one/tipjar/errors"
	"github.com/iov-one/tipjar/gconf"
)

const (
	confPkg = "paysplit"

	// DefaultStandard is used in events when the configuration does not
	// name one.
	DefaultStandard = "tipjar"

	maxStandardSize = 64
)

// Configuration is the global contract configuration kept in the gconf
// store.
type Configuration struct {
	// Owner is the only account allowed to change the fee and withdraw
	// the collected funds.
	Owner tipjar.Address `json:"owner"`
	// FeeNumerator is the fee over FractionalBase.
	FeeNumerator uint64 `json:"fee_numerator"`
	// Standard is the name put in every settlement event.
	Standard string `json:"standard,omitempty"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if c.FeeNumerator > FractionalBase {
		errs = errors.AppendField(errs, "FeeNumerator",
			errors.Wrapf(errors.ErrConfig, "must not exceed %d", FractionalBase))
	}
	if len(c.Standard) > maxStandardSize {
		errs = errors.AppendField(errs, "Standard", errors.ErrInput)
	}
	return errs
}

// EventStandard returns the standard name used in settlement events.
func (c *Configuration) EventStandard() string {
	if c.Standard == "" {
		return DefaultStandard
	}
	return c.Standard
}

// LoadConfiguration returns the current contract configuration. A missing
// configuration is a configuration error.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(errors.ErrConfig, "contract not initialized")
	case err != nil:
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

// Initializer loads the contract configuration from the "conf" section of
// the genesis file. The contract cannot be used without it.
type Initializer struct{}

var _ tipjar.Initializer = Initializer{}

func (Initializer) FromGenesis(opts tipjar.Options, db tipjar.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(db, opts, confPkg, &conf); err != nil {
		return errors.Wrap(err, "paysplit configuration")
	}
	return nil
}
