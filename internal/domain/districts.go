package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed districts.yaml
var builtinDistricts []byte

// ErrDistrictNotFound is returned when a place name is not in the table.
var ErrDistrictNotFound = errors.New("district not found")

// District is a named place with fixed coordinates and socioeconomic profile.
type District struct {
	Name            string  `json:"name" yaml:"name"`
	Lat             float64 `json:"lat" yaml:"lat"`
	Lon             float64 `json:"lon" yaml:"lon"`
	DistrictProfile `yaml:",inline"`
}

// DistrictTable resolves place names to districts. Lookups are
// case-insensitive and ignore surrounding whitespace.
type DistrictTable struct {
	byKey map[string]District
	order []string
}

// UnmarshalYAML fills profile fields absent from the entry with the
// default profile.
func (d *District) UnmarshalYAML(node *yaml.Node) error {
	type plain District
	p := plain{DistrictProfile: DefaultDistrictProfile()}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*d = District(p)
	return nil
}

type districtFile struct {
	Districts []District `yaml:"districts"`
}

// BuiltinDistricts returns the embedded Uttarakhand table.
func BuiltinDistricts() *DistrictTable {
	t, err := ParseDistricts(builtinDistricts)
	if err != nil {
		panic(fmt.Sprintf("embedded districts.yaml: %v", err))
	}
	return t
}

// LoadDistricts reads a district table from a YAML file.
func LoadDistricts(path string) (*DistrictTable, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read districts: %w", err)
	}
	return ParseDistricts(payload)
}

// ParseDistricts decodes a YAML district table. Names must be unique.
func ParseDistricts(payload []byte) (*DistrictTable, error) {
	var f districtFile
	if err := yaml.Unmarshal(payload, &f); err != nil {
		return nil, fmt.Errorf("parse districts: %w", err)
	}

	t := &DistrictTable{byKey: make(map[string]District, len(f.Districts))}
	for _, d := range f.Districts {
		key := districtKey(d.Name)
		if key == "" {
			return nil, errors.New("parse districts: district with empty name")
		}
		if _, dup := t.byKey[key]; dup {
			return nil, fmt.Errorf("parse districts: duplicate district %q", d.Name)
		}
		t.byKey[key] = d
		t.order = append(t.order, key)
	}
	sort.Strings(t.order)
	return t, nil
}

// Lookup resolves a place name. Unknown names report ok=false.
func (t *DistrictTable) Lookup(name string) (District, bool) {
	d, ok := t.byKey[districtKey(name)]
	return d, ok
}

// Resolve is Lookup with an error for unknown names.
func (t *DistrictTable) Resolve(name string) (District, error) {
	d, ok := t.Lookup(name)
	if !ok {
		return District{}, fmt.Errorf("%w: %q", ErrDistrictNotFound, name)
	}
	return d, nil
}

// All returns the districts sorted by name.
func (t *DistrictTable) All() []District {
	out := make([]District, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.byKey[k])
	}
	return out
}

func districtKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
