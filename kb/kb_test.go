package kb

import (
	"testing"

	"github.com/clarionhq/clarion/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRegion(t *testing.T) {
	k := MustNew()

	tests := []struct {
		location string
		want     string
	}{
		{"Gurdaspur", "punjab"},
		{"somewhere in Miami", "florida"},
		{"California", "california"},
		{"Houston area", "texas"},
		{"Atlantis", "national"},
		{"", "national"},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, k.ResolveRegion(tt.location))
		})
	}
}

func TestContactsAreAlwaysFallback(t *testing.T) {
	k := MustNew()

	contacts := k.Contacts("national", core.HazardGeneral)
	require.NotEmpty(t, contacts)
	for _, c := range contacts {
		assert.True(t, c.Fallback, "knowledge base records must carry the fallback flag")
		assert.NotEmpty(t, c.Value)
	}
}

func TestContactsUnknownRegionDefaultsToNational(t *testing.T) {
	k := MustNew()
	assert.Equal(t, k.Contacts("national", core.HazardGeneral), k.Contacts("nowhere", core.HazardGeneral))
}

func TestContactsHazardFiltering(t *testing.T) {
	k := MustNew()

	general := k.Contacts("national", core.HazardGeneral)
	flood := k.Contacts("national", core.HazardFlood)

	// Hazard-less entries apply everywhere, so a flood lookup is never
	// smaller than the shared baseline entries it includes.
	require.NotEmpty(t, flood)
	var shared int
	for _, c := range general {
		for _, f := range flood {
			if c.Value == f.Value {
				shared++
				break
			}
		}
	}
	assert.Greater(t, shared, 0)
}

func TestInstructionsFallBackToGeneral(t *testing.T) {
	k := MustNew()

	require.NotEmpty(t, k.Instructions(core.HazardFlood))
	require.NotEmpty(t, k.Instructions(core.HazardGeneral))
	assert.Equal(t, k.Instructions(core.HazardGeneral), k.Instructions(core.HazardUnknown))
}

func TestRegionsListsDefaultFirst(t *testing.T) {
	k := MustNew()
	regions := k.Regions()
	require.NotEmpty(t, regions)
	assert.Equal(t, "national", regions[0])
	assert.Contains(t, regions, "punjab")
}
