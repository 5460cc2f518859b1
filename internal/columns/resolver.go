package columns

import (
	"strings"
	"time"

	"github.com/ginjaninja78/taxease/internal/dataset"
)

// Resolver reads role values out of dataset rows. Accessors for an
// unresolved role return the zero value.
type Resolver struct {
	fields map[Role]string
}

// Has reports whether a role is backed by a field.
func (r *Resolver) Has(role Role) bool {
	_, ok := r.fields[role]
	return ok
}

// Field returns the field backing a role.
func (r *Resolver) Field(role Role) string {
	return r.fields[role]
}

func (r *Resolver) raw(row dataset.Row, role Role) string {
	f, ok := r.fields[role]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[f])
}

// RawAmount returns the unparsed amount cell.
func (r *Resolver) RawAmount(row dataset.Row) string { return r.raw(row, RoleAmount) }

// Amount parses the amount cell.
func (r *Resolver) Amount(row dataset.Row) (float64, bool) {
	if !r.Has(RoleAmount) {
		return 0, false
	}
	return ParseAmount(r.raw(row, RoleAmount))
}

// Jurisdiction returns the upper-cased jurisdiction code.
func (r *Resolver) Jurisdiction(row dataset.Row) string {
	return NormalizeJurisdiction(r.raw(row, RoleJurisdiction))
}

// Locality returns the title-cased locality name.
func (r *Resolver) Locality(row dataset.Row) string {
	return NormalizeLocality(r.raw(row, RoleLocality))
}

// County returns the title-cased county name.
func (r *Resolver) County(row dataset.Row) string {
	return NormalizeLocality(r.raw(row, RoleCounty))
}

// Product returns the product description as written.
func (r *Resolver) Product(row dataset.Row) string {
	return r.raw(row, RoleProduct)
}

// Date returns the parsed date and the raw cell.
func (r *Resolver) Date(row dataset.Row) (time.Time, string) {
	raw := r.raw(row, RoleDate)
	t, _ := ParseDate(raw)
	return t, raw
}
