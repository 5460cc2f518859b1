package columns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/taxease/internal/dataset"
)

func TestInfer(t *testing.T) {
	m := Infer([]string{"Order ID", "State", "City", "County", "Product Description", "Sale Amount", "Order Date", "Total"})

	assert.Equal(t, []string{"Sale Amount", "Total"}, m[RoleAmount])
	assert.Equal(t, []string{"State"}, m[RoleJurisdiction])
	assert.Equal(t, []string{"City"}, m[RoleLocality])
	assert.Equal(t, []string{"County"}, m[RoleCounty])
	assert.Equal(t, []string{"Product Description"}, m[RoleProduct])
	assert.Equal(t, []string{"Order Date"}, m[RoleDate])

	f, ok := m.Field(RoleAmount)
	require.True(t, ok)
	assert.Equal(t, "Sale Amount", f)
}

func TestInferNoMatches(t *testing.T) {
	m := Infer([]string{"foo", "bar", ""})
	for _, role := range Roles {
		_, ok := m.Field(role)
		assert.False(t, ok, role)
	}
	assert.Empty(t, m.Resolved())

	r := m.Resolver()
	row := dataset.Row{"foo": "1"}
	_, ok := r.Amount(row)
	assert.False(t, ok)
	assert.Empty(t, r.Jurisdiction(row))
	assert.Empty(t, r.Locality(row))
}

func TestInferFieldInSeveralRoles(t *testing.T) {
	m := Infer([]string{"Sales Date", "Ship To State"})
	assert.Equal(t, []string{"Sales Date"}, m[RoleAmount])
	assert.Equal(t, []string{"Sales Date"}, m[RoleDate])
	assert.Equal(t, []string{"Ship To State"}, m[RoleJurisdiction])
}

func TestResolver(t *testing.T) {
	r := Infer([]string{"state", "city", "county", "item", "revenue", "period"}).Resolver()
	row := dataset.Row{
		"state":   " ca ",
		"city":    "los ANGELES",
		"county":  "los angeles county",
		"item":    "Software License",
		"revenue": "$1,250.50",
		"period":  "2024-03-01",
	}

	assert.True(t, r.Has(RoleAmount))
	amt, ok := r.Amount(row)
	require.True(t, ok)
	assert.InDelta(t, 1250.50, amt, 1e-9)
	assert.Equal(t, "$1,250.50", r.RawAmount(row))
	assert.Equal(t, "CA", r.Jurisdiction(row))
	assert.Equal(t, "Los Angeles", r.Locality(row))
	assert.Equal(t, "Los Angeles County", r.County(row))
	assert.Equal(t, "Software License", r.Product(row))

	d, raw := r.Date(row)
	assert.Equal(t, "2024-03-01", raw)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Equal(d))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1200", 1200, true},
		{" 300 ", 300, true},
		{"$1,200.50", 1200.50, true},
		{"USD 75", 75, true},
		{"(45.00)", -45, true},
		{"($1,000)", -1000, true},
		{"-45", -45, true},
		{"", 0, false},
		{"   ", 0, false},
		{"$", 0, false},
		{"n/a", 0, false},
		{"12abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "CA", NormalizeJurisdiction(" ca "))
	assert.Equal(t, "San Francisco", NormalizeLocality("  san   FRANCISCO "))
	assert.Equal(t, "", NormalizeLocality("   "))
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-01", "03/01/2024", "3/1/2024", "2024/03/01", "Mar 1, 2024"} {
		d, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, 2024, d.Year(), in)
		assert.Equal(t, time.March, d.Month(), in)
		assert.Equal(t, 1, d.Day(), in)
	}
	_, ok := ParseDate("yesterday")
	assert.False(t, ok)
}
