package links

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate_CountryProfile(t *testing.T) {
	links, err := Generate("country_profile", Params{CountryID: 76, CountryName: "Brazil"})
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "https://atlas.hks.harvard.edu/countries/76", links[0].URL)
	require.Equal(t, CountryPage, links[0].Type)
}

func TestGenerate_UnknownQueryTypeReturnsEmpty(t *testing.T) {
	for _, qt := range []string{"global_datum", "explore_data_availability", "reject", "bogus"} {
		links, err := Generate(qt, Params{CountryID: 76})
		require.NoError(t, err)
		require.Empty(t, links)
	}
}

func TestGenerate_GrowthOpportunities_FrontierFallback(t *testing.T) {
	// USA (840) is a frontier country: falls back to the Explore page.
	links, err := Generate("growth_opportunities", Params{CountryID: 840, CountryName: "United States"})
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, ExplorePage, links[0].Type)
	require.Contains(t, links[0].URL, "/explore/feasibility?")
}

func TestGenerate_GrowthOpportunities_NonFrontierUsesCountryPage(t *testing.T) {
	links, err := Generate("growth_opportunities", Params{CountryID: 76, CountryName: "Brazil"})
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, CountryPage, links[0].Type)
	require.Contains(t, links[0].URL, "/growth-opportunities")
}

func TestGenerate_ProductTable_FrontierFallback(t *testing.T) {
	links, err := Generate("product_table", Params{CountryID: 276, CountryName: "Germany"})
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, ExplorePage, links[0].Type)
	require.Contains(t, links[0].URL, "/explore/feasibility/table?")
}

func TestGenerate_ExploreGroupWithNoGroupIDReturnsEmpty(t *testing.T) {
	links, err := Generate("explore_group", Params{})
	require.NoError(t, err)
	require.Empty(t, links)
}

func TestGenerate_ExploreGroupWithGroupID(t *testing.T) {
	gid := 7
	links, err := Generate("explore_group", Params{GroupID: &gid})
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Contains(t, links[0].URL, "exporter=group-7")
}

func TestGenerate_ProductInfoRejectsUnknownClassification(t *testing.T) {
	_, err := Generate("product_info", Params{ProductID: 726, ProductClassification: "BOGUS"})
	require.Error(t, err)
}

func TestGenerate_YearDefaultsApplied(t *testing.T) {
	links, err := Generate("treemap_products", Params{CountryID: 76, CountryName: "Brazil"})
	require.NoError(t, err)
	require.Contains(t, links[0].URL, "year=2024")
}

func TestGenerate_IsPure(t *testing.T) {
	p := Params{CountryID: 76, CountryName: "Brazil"}
	a, err := Generate("country_lookback", p)
	require.NoError(t, err)
	b, err := Generate("country_lookback", p)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestIsFrontierCountry(t *testing.T) {
	require.True(t, IsFrontierCountry(840))  // USA
	require.True(t, IsFrontierCountry(276))  // Germany
	require.False(t, IsFrontierCountry(76))  // Brazil
}

func TestGenerate_ResolutionNotesPassedThrough(t *testing.T) {
	links, err := Generate("country_profile", Params{CountryID: 76, ResolutionNotes: []string{"ambiguous match"}})
	require.NoError(t, err)
	require.Equal(t, []string{"ambiguous match"}, links[0].ResolutionNotes)
}
