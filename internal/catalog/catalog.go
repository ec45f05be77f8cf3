// Package catalog holds the device table: how each device type is anchored in
// a room and whether it draws a viewing cone.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// DeviceDoorbell is the only type with a door-adjacency rule.
const DeviceDoorbell = "doorbell"

type Category string

const (
	CategoryEntry          Category = "entry"
	CategoryInterior       Category = "interior"
	CategoryVideo          Category = "video"
	CategorySafety         Category = "safety"
	CategoryInfrastructure Category = "infrastructure"
)

// Anchor is how a device is positioned inside its room.
type Anchor string

const (
	AnchorWall     Anchor = "wall"
	AnchorInterior Anchor = "interior"
	AnchorCorner   Anchor = "corner"
)

type Device struct {
	Type     string   `yaml:"type" json:"type"`
	Label    string   `yaml:"label" json:"label"`
	Category Category `yaml:"category" json:"category"`
	Anchor   Anchor   `yaml:"anchor" json:"anchor"`
	ViewCone bool     `yaml:"viewCone" json:"viewCone"`
}

// Catalog is an immutable lookup table. It is safe to share between
// goroutines.
type Catalog struct {
	devices map[string]Device
}

//go:embed devices.yaml
var defaultDevices []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Default returns the built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := parse(defaultDevices)
		if err != nil {
			panic(fmt.Sprintf("embedded device catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a catalog from YAML.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parse(data)
}

// LoadFile reads a catalog from path, or returns the built-in catalog when
// path is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func parse(data []byte) (*Catalog, error) {
	var doc struct {
		Devices []Device `yaml:"devices"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	devices := make(map[string]Device, len(doc.Devices))
	for _, d := range doc.Devices {
		if d.Type == "" {
			return nil, fmt.Errorf("%w: device without type", ErrInvalidCatalog)
		}
		if _, dup := devices[d.Type]; dup {
			return nil, fmt.Errorf("%w: duplicate device type %q", ErrInvalidCatalog, d.Type)
		}
		if !d.Anchor.valid() {
			return nil, fmt.Errorf("%w: device %q has unknown anchor %q", ErrInvalidCatalog, d.Type, d.Anchor)
		}
		if !d.Category.valid() {
			return nil, fmt.Errorf("%w: device %q has unknown category %q", ErrInvalidCatalog, d.Type, d.Category)
		}
		devices[d.Type] = d
	}
	return &Catalog{devices: devices}, nil
}

func (c *Catalog) Lookup(deviceType string) (Device, bool) {
	d, ok := c.devices[deviceType]
	return d, ok
}

// Types returns every device type, sorted.
func (c *Catalog) Types() []string {
	types := make([]string, 0, len(c.devices))
	for t := range c.devices {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Devices returns every entry ordered by type.
func (c *Catalog) Devices() []Device {
	out := make([]Device, 0, len(c.devices))
	for _, t := range c.Types() {
		out = append(out, c.devices[t])
	}
	return out
}

func (a Anchor) valid() bool {
	switch a {
	case AnchorWall, AnchorInterior, AnchorCorner:
		return true
	}
	return false
}

func (c Category) valid() bool {
	switch c {
	case CategoryEntry, CategoryInterior, CategoryVideo, CategorySafety, CategoryInfrastructure:
		return true
	}
	return false
}
