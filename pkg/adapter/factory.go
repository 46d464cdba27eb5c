package adapter

import (
	"errors"
	"fmt"
	"log"
)

// ErrUnknownPlatform is returned when no constructor is registered for an
// account's platform type.
var ErrUnknownPlatform = errors.New("unknown platform type")

// Constructor builds an adapter from a persisted account record. It fails
// fast on malformed configuration; missing credentials are not an error
// (the adapter reports them through IsConfigured instead).
type Constructor func(record AccountRecord) (Adapter, error)

// Factory maps platform type keys to adapter constructors. Types are
// registered with explicit calls at startup, before any account is built;
// there is no import-time self-registration.
type Factory struct {
	constructors map[string]Constructor
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{constructors: make(map[string]Constructor)}
}

// RegisterType registers the constructor for a platform type, replacing any
// previous registration.
func (f *Factory) RegisterType(platformType string, ctor Constructor) {
	f.constructors[platformType] = ctor
}

// Types returns the registered platform type keys.
func (f *Factory) Types() []string {
	out := make([]string, 0, len(f.constructors))
	for t := range f.constructors {
		out = append(out, t)
	}
	return out
}

// CreateAdapter builds an adapter for one account record. An unrecognized
// platform type yields ErrUnknownPlatform so one malformed record cannot
// take down the rest of the load.
func (f *Factory) CreateAdapter(record AccountRecord) (Adapter, error) {
	ctor, ok := f.constructors[record.PlatformType]
	if !ok {
		return nil, fmt.Errorf("%w: %q (account %s)", ErrUnknownPlatform, record.PlatformType, record.ID)
	}
	a, err := ctor(record)
	if err != nil {
		return nil, fmt.Errorf("building %s adapter for account %s: %w", record.PlatformType, record.ID, err)
	}
	return a, nil
}

// CreateAdaptersFromConfig maps every record through CreateAdapter, logging
// and skipping failures. The returned slice keeps the input order.
func (f *Factory) CreateAdaptersFromConfig(records []AccountRecord) []Adapter {
	adapters := make([]Adapter, 0, len(records))
	for _, record := range records {
		a, err := f.CreateAdapter(record)
		if err != nil {
			log.Printf("Skipping account %s: %v", record.ID, err)
			continue
		}
		adapters = append(adapters, a)
	}
	return adapters
}
