package graphqlpipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripIDPrefix(t *testing.T) {
	assert.Equal(t, "404", stripIDPrefix("location-404"))
	assert.Equal(t, "726", stripIDPrefix("product-HS92-726"))
	assert.Equal(t, "808", stripIDPrefix("808"), "an unprefixed value passes through unchanged")
}

func TestFormatIDsForAPI_Explore(t *testing.T) {
	year := 2020
	vars := formatIDsForAPI(APITargetExplore, resolvedParams{
		Country: ResolvedEntity{ID: 404, Found: true},
		Product: ResolvedEntity{ID: 726, Found: true},
		Year:    &year,
	})
	assert.Equal(t, 404, vars["countryId"])
	assert.Equal(t, 726, vars["productId"])
	assert.Equal(t, 2020, vars["year"])
	assert.NotContains(t, vars, "location")
}

func TestFormatIDsForAPI_CountryPages(t *testing.T) {
	vars := formatIDsForAPI(APITargetCountryPages, resolvedParams{
		Country:      ResolvedEntity{ID: 404, Found: true},
		Product:      ResolvedEntity{ID: 726, Found: true},
		ProductClass: "hs12",
	})
	assert.Equal(t, "location-404", vars["location"])
	assert.Equal(t, "product-HS12-726", vars["product"])
	assert.NotContains(t, vars, "countryId", "numeric keys are removed entirely for country_pages")
}

func TestFormatIDsForAPI_UnresolvedEntityOmitted(t *testing.T) {
	vars := formatIDsForAPI(APITargetExplore, resolvedParams{Country: ResolvedEntity{Found: false}})
	assert.NotContains(t, vars, "countryId")
}
