// Package catalog provides the predefined ASIC hardware catalog: a static
// name → {hashrate, power, price} lookup the calculator reads but never
// mutates. Entries can be supplemented or overridden from a TOML file.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/unlock-blocks/solmine/internal/model"
)

// ErrUnknownModel is returned when a lookup misses the catalog.
var ErrUnknownModel = errors.New("catalog: unknown miner model")

// builtin mirrors the original calculator's miner database. Prices are in
// the reference currency (EUR).
var builtin = []entry{
	// Antminer series (Bitmain).
	{"S19", 95, 3250, 550},
	{"S19K Pro", 120, 2760, 770},
	{"S21", 200, 3500, 2211},
	{"S21 XP", 270, 3645, 4850.62},
	{"S23 Hyd", 580, 5510, 11311},

	// Other professional brands.
	{"Fluminer T3", 115, 1700, 1900},
	{"Avalon Q", 90, 1674, 1500},
	{"Avalon Nano 3S", 6, 140, 290},

	// Hobby / educational miners.
	{"NerdMiner NerdQaxe++", 4.8, 72, 350},
	{"NerdMiner NerdQaxe+ Hyd", 2.5, 60, 429},
	{"Bitaxe Touch", 1.6, 22, 275},
	{"Bitaxe Gamma 601", 1.2, 17, 58},
	{"Bitaxe Gamma Turbo", 2.5, 36, 347},
	{"Bitaxe Supra Hex 701", 4.2, 90, 235},
}

// entry is the on-disk/in-source representation of a catalog row. Floats
// here are file-format plumbing only; they become model types on the way
// out.
type entry struct {
	Name        string  `toml:"name"`
	HashrateTHS float64 `toml:"hashrate_ths"`
	PowerWatts  float64 `toml:"power_watts"`
	PriceEUR    float64 `toml:"price_eur"`
}

func (e entry) profile() model.HardwareProfile {
	return model.HardwareProfile{
		Name:        e.Name,
		HashrateTHS: e.HashrateTHS,
		PowerWatts:  e.PowerWatts,
		Price:       model.EURFromFloat(e.PriceEUR),
	}
}

// Catalog is an immutable miner lookup table.
type Catalog struct {
	byName map[string]model.HardwareProfile
}

// Builtin returns the catalog of predefined miners.
func Builtin() *Catalog {
	c := &Catalog{byName: make(map[string]model.HardwareProfile, len(builtin))}
	for _, e := range builtin {
		c.byName[e.Name] = e.profile()
	}
	return c
}

// LoadFile returns the builtin catalog merged with entries from a TOML
// file. File entries override builtins with the same name.
//
// File format:
//
//	[[miners]]
//	name = "Bitaxe Touch"
//	hashrate_ths = 1.6
//	power_watts = 22.0
//	price_eur = 275.0
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}

	var file struct {
		Miners []entry `toml:"miners"`
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
	}

	c := Builtin()
	for _, e := range file.Miners {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog: entry without a name in %s", path)
		}
		if e.HashrateTHS <= 0 {
			return nil, fmt.Errorf("catalog: %q: hashrate must be positive", e.Name)
		}
		if e.PowerWatts < 0 || e.PriceEUR < 0 {
			return nil, fmt.Errorf("catalog: %q: power and price must be non-negative", e.Name)
		}
		c.byName[e.Name] = e.profile()
	}
	return c, nil
}

// Get looks up a miner by model name.
func (c *Catalog) Get(name string) (model.HardwareProfile, error) {
	hw, ok := c.byName[name]
	if !ok {
		return model.HardwareProfile{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return hw, nil
}

// Names returns all model names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int { return len(c.byName) }
