// Package seed holds the fixed initial data set of the booking store.
// The default set is embedded in the binary; a YAML file with the same
// shape can replace it at startup.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

//go:embed seed.yaml
var defaultSeed []byte

// Data is the decoded seed document.
type Data struct {
	Routes []model.Route `yaml:"routes"`
	Cities []string      `yaml:"cities"`
	Users  []model.User  `yaml:"users"`
}

// Default returns a fresh copy of the embedded seed set.  It panics if the
// embedded document is broken, which can only happen at build time.
func Default() Data {
	d, err := Parse(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("seed: embedded data invalid: %v", err))
	}
	return d
}

// Load reads a seed document from path.  An empty path yields Default().
func Load(path string) (Data, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a seed document.
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("seed: decode: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Data{}, err
	}
	return d, nil
}

// Validate checks the invariants the store relies on.
func (d Data) Validate() error {
	var errs []error
	ids := make(map[int]bool, len(d.Routes))
	for _, r := range d.Routes {
		if ids[r.ID] {
			errs = append(errs, fmt.Errorf("route %d: duplicate id", r.ID))
		}
		ids[r.ID] = true
		if r.AvailableSeats < 0 {
			errs = append(errs, fmt.Errorf("route %d: negative availableSeats", r.ID))
		}
		if !r.BusType.Valid() {
			errs = append(errs, fmt.Errorf("route %d: unknown busType %q", r.ID, r.BusType))
		}
	}
	emails := make(map[string]bool, len(d.Users))
	for _, u := range d.Users {
		if u.Email == "" {
			errs = append(errs, errors.New("user with empty email"))
			continue
		}
		if emails[u.Email] {
			errs = append(errs, fmt.Errorf("user %s: duplicate email", u.Email))
		}
		emails[u.Email] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("seed: %w", errors.Join(errs...))
	}
	return nil
}
