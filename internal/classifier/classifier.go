// Package classifier maps free-text product descriptions onto the closed
// set of product categories used by the taxability matrix.
package classifier

import (
	"strings"

	"github.com/ginjaninja78/taxease/internal/types"
)

// rule is one keyword group. Rules are evaluated in slice order and the
// first group with any matching keyword wins.
type rule struct {
	category types.Category
	keywords []string
}

var rules = []rule{
	{types.CategorySoftware, []string{"software", "license", "app"}},
	{types.CategorySaaS, []string{"saas", "subscription", "service", "platform"}},
	{types.CategoryConsulting, []string{"consulting", "development", "custom", "professional"}},
}

// Default is returned for descriptions that match no keyword group,
// including empty descriptions.
const Default = types.CategoryPhysicalGoods

// Classify returns the category for a product description. Matching is a
// case-insensitive substring search.
func Classify(description string) types.Category {
	desc := strings.ToLower(description)
	if strings.TrimSpace(desc) == "" {
		return Default
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				return r.category
			}
		}
	}
	return Default
}
