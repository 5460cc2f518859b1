package reference

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/taxease/internal/types"
)

// File is the YAML layout of a reference-table override file.
//
// Example:
//
//	replace_defaults: false
//	jurisdictions:
//	  - {code: CA, name: California, rate: 0.0725, threshold: 500000}
//	localities:
//	  - {code: CA, locality: Oakland, county: 0.0025, district: 0.0275}
//	taxability:
//	  - {code: CA, category: saas, taxable: false}
type File struct {
	// ReplaceDefaults drops the built-in tables instead of layering on top.
	ReplaceDefaults bool                `yaml:"replace_defaults"`
	Jurisdictions   []types.Jurisdiction `yaml:"jurisdictions"`
	Localities      []LocalityFileEntry  `yaml:"localities"`
	Taxability      []TaxabilityEntry    `yaml:"taxability"`
}

// LocalityFileEntry is a flat locality row as written in YAML.
type LocalityFileEntry struct {
	Code     string  `yaml:"code"`
	Locality string  `yaml:"locality"`
	City     float64 `yaml:"city"`
	County   float64 `yaml:"county"`
	District float64 `yaml:"district"`
}

// LoadFile reads a reference YAML file and returns tables built from the
// defaults plus the file contents (or the file alone with replace_defaults).
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file: %w", err)
	}
	t, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load decodes reference YAML from r.
func Load(r io.Reader) (*Tables, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse reference file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid reference file: %w", err)
	}

	b := NewBuilder()
	if !f.ReplaceDefaults {
		b.extend(Default())
	}
	for _, j := range f.Jurisdictions {
		b.Jurisdiction(j)
	}
	for _, l := range f.Localities {
		b.Locality(l.Code, l.Locality, types.LocalityRates{City: l.City, County: l.County, District: l.District})
	}
	for _, e := range f.Taxability {
		b.Taxable(e.Code, e.Category, e.Taxable)
	}
	return b.Build(), nil
}

// Export returns the tables in the override-file layout with
// replace_defaults set, so the output can be edited and loaded back.
func (t *Tables) Export() File {
	f := File{ReplaceDefaults: true, Jurisdictions: t.Jurisdictions(), Taxability: t.Taxability()}
	for _, l := range t.Localities() {
		f.Localities = append(f.Localities, LocalityFileEntry{
			Code:     l.Code,
			Locality: l.Locality,
			City:     l.Rates.City,
			County:   l.Rates.County,
			District: l.Rates.District,
		})
	}
	return f
}

func (b *Builder) extend(t *Tables) {
	for k, v := range t.jurisdictions {
		b.t.jurisdictions[k] = v
	}
	for k, v := range t.localities {
		b.t.localities[k] = v
	}
	for k, v := range t.taxability {
		b.t.taxability[k] = v
	}
}

func (f *File) validate() error {
	for i, j := range f.Jurisdictions {
		if j.Code == "" {
			return fmt.Errorf("jurisdictions[%d].code is required", i)
		}
		if j.Rate < 0 || j.Rate >= 1 {
			return fmt.Errorf("jurisdictions[%d].rate must be a fraction in [0, 1), got %v", i, j.Rate)
		}
		if j.Threshold < 0 {
			return fmt.Errorf("jurisdictions[%d].threshold must not be negative", i)
		}
	}
	for i, l := range f.Localities {
		if l.Code == "" || l.Locality == "" {
			return fmt.Errorf("localities[%d] needs code and locality", i)
		}
		if l.City < 0 || l.County < 0 || l.District < 0 {
			return fmt.Errorf("localities[%d] rates must not be negative", i)
		}
	}
	for i, e := range f.Taxability {
		if e.Code == "" {
			return fmt.Errorf("taxability[%d].code is required", i)
		}
		if !e.Category.Valid() {
			return fmt.Errorf("taxability[%d].category %q is not a known category", i, e.Category)
		}
	}
	return nil
}
