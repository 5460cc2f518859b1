// =============================================================================
// TaxEase Analyzer - Column Inference
// =============================================================================
//
// Sales exports never agree on column names. Instead of a fixed schema we
// look at each field name and assign it to the roles whose keywords it
// contains. A field may fill more than one role ("Sales Date" is both an
// amount and a date candidate); the first candidate per role in field order
// is the one the resolver reads.
//
// =============================================================================

package columns

import "strings"

// Role is a semantic column role.
type Role string

const (
	RoleAmount       Role = "amount"
	RoleJurisdiction Role = "jurisdiction"
	RoleLocality     Role = "locality"
	RoleCounty       Role = "county"
	RoleProduct      Role = "product"
	RoleDate         Role = "date"
)

// Roles lists every role in report order.
var Roles = []Role{RoleAmount, RoleJurisdiction, RoleLocality, RoleCounty, RoleProduct, RoleDate}

var keywords = map[Role][]string{
	RoleAmount:       {"amount", "total", "price", "sales", "revenue"},
	RoleJurisdiction: {"state", "region", "location"},
	RoleLocality:     {"city", "municipality"},
	RoleCounty:       {"county"},
	RoleProduct:      {"product", "item", "description", "type", "category"},
	RoleDate:         {"date", "time", "period"},
}

// Keywords returns the keyword list for a role.
func Keywords(r Role) []string {
	return append([]string(nil), keywords[r]...)
}

// Mapping holds the ordered candidate fields per role.
type Mapping map[Role][]string

// Infer builds a Mapping from the dataset's field names.
func Infer(fields []string) Mapping {
	m := make(Mapping, len(Roles))
	for _, field := range fields {
		name := strings.ToLower(strings.TrimSpace(field))
		if name == "" {
			continue
		}
		for _, role := range Roles {
			if matchesAny(name, keywords[role]) {
				m[role] = append(m[role], field)
			}
		}
	}
	return m
}

// Field returns the authoritative field for a role.
func (m Mapping) Field(r Role) (string, bool) {
	candidates := m[r]
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}

// Resolved returns role -> authoritative field for every resolved role.
func (m Mapping) Resolved() map[string]string {
	out := make(map[string]string, len(m))
	for _, role := range Roles {
		if f, ok := m.Field(role); ok {
			out[string(role)] = f
		}
	}
	return out
}

// Resolver returns typed accessors over this mapping.
func (m Mapping) Resolver() *Resolver {
	r := &Resolver{fields: make(map[Role]string, len(Roles))}
	for _, role := range Roles {
		if f, ok := m.Field(role); ok {
			r.fields[role] = f
		}
	}
	return r
}

func matchesAny(name string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
