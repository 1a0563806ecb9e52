// Package links implements LinkGenerator: deterministic URL builders for
// Atlas visualization pages. Every function here is pure — no LLM calls,
// no HTTP, no catalog dependency — ported line-for-line from
// original_source/src/atlas_links.py, the module it supplements (spec.md
// does not enumerate every query type's link shape; this package restores
// the full set, a SUPPLEMENTED FEATURE).
package links

import (
	"fmt"
	"sort"
	"strings"
)

const (
	AtlasBaseURL        = "https://atlas.hks.harvard.edu"
	DefaultYear          = 2024
	DefaultStartYear     = 1995
	DefaultProductLevel  = 4
)

// productClassificationPrefixes maps a classification name to its URL
// prefix. The numeric product id is classification-specific.
var productClassificationPrefixes = map[string]string{
	"HS92": "HS92",
	"HS12": "HS12",
	"HS22": "HS22",
	"SITC": "SITC",
}

// frontierCountryIDs are countries whose Country Page lacks
// growth-opportunities and product-table subpages; link generation falls
// back to the equivalent Explore feasibility pages for them.
var frontierCountryIDs = map[int]bool{
	40:  true, // Austria
	56:  true, // Belgium
	203: true, // Czech Republic
	208: true, // Denmark
	246: true, // Finland
	250: true, // France
	276: true, // Germany
	372: true, // Ireland
	380: true, // Italy
	392: true, // Japan
	410: true, // South Korea
	528: true, // Netherlands
	702: true, // Singapore
	752: true, // Sweden
	756: true, // Switzerland
	826: true, // United Kingdom
	840: true, // USA
}

// IsFrontierCountry reports whether countryID lacks the country-page
// growth-opportunities/product-table subpages.
func IsFrontierCountry(countryID int) bool {
	return frontierCountryIDs[countryID]
}

// LinkType distinguishes a country-page link from an explore-page link.
type LinkType string

const (
	CountryPage LinkType = "country_page"
	ExplorePage LinkType = "explore_page"
)

// Link is one deterministic link to an Atlas visualization page.
type Link struct {
	URL             string   `json:"url"`
	Label           string   `json:"label"`
	Type            LinkType `json:"link_type"`
	ResolutionNotes []string `json:"resolution_notes,omitempty"`
}

// Params carries every field a query-type handler might consult. Fields
// use pointers where absence is meaningful (e.g. GroupID: nil means "no
// group was resolved", not zero).
type Params struct {
	CountryID             int
	CountryName           string
	PartnerID             int
	PartnerName           string
	ProductID             int
	ProductClassification string
	ProductName           string
	Year                  *int
	YearMin               *int
	YearMax               *int
	ProductLevel          *int
	GroupID               *int
	GroupName             string
	ResolutionNotes       []string
}

func (p Params) year() int {
	if p.Year != nil {
		return *p.Year
	}
	return DefaultYear
}

// yearRange returns (year, startYear, endYear) for time-series queries.
func (p Params) yearRange() (year, startYear, endYear int) {
	year = p.year()
	if p.YearMax != nil {
		year = *p.YearMax
	}
	startYear = DefaultStartYear
	if p.YearMin != nil {
		startYear = *p.YearMin
	}
	return year, startYear, year
}

func (p Params) productLevel() int {
	if p.ProductLevel != nil {
		return *p.ProductLevel
	}
	return DefaultProductLevel
}

func (p Params) countryName() string {
	if p.CountryName != "" {
		return p.CountryName
	}
	return fmt.Sprintf("%d", p.CountryID)
}

func (p Params) partnerName() string {
	if p.PartnerName != "" {
		return p.PartnerName
	}
	return fmt.Sprintf("%d", p.PartnerID)
}

func (p Params) productName() string {
	if p.ProductName != "" {
		return p.ProductName
	}
	return fmt.Sprintf("%d", p.ProductID)
}

func (p Params) productClassification() string {
	if p.ProductClassification != "" {
		return p.ProductClassification
	}
	return "HS92"
}

// --- URL parameter formatting helpers ---

func productParam(classification string, productID int) (string, error) {
	clsUpper := strings.ToUpper(classification)
	prefix, ok := productClassificationPrefixes[clsUpper]
	if !ok {
		keys := make([]string, 0, len(productClassificationPrefixes))
		for k := range productClassificationPrefixes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("links: unknown product classification %q (valid: %v)", classification, keys)
	}
	return fmt.Sprintf("product-%s-%d", prefix, productID), nil
}

func exporterParam(countryID int) string { return fmt.Sprintf("country-%d", countryID) }
func groupExporterParam(groupID int) string { return fmt.Sprintf("group-%d", groupID) }

// --- Page URL builders ---

// CountryPageURL builds a country page URL, optionally for a subpage.
func CountryPageURL(countryID int, subpage string) string {
	base := fmt.Sprintf("%s/countries/%d", AtlasBaseURL, countryID)
	if subpage != "" {
		return base + "/" + subpage
	}
	return base
}

type treemapOpts struct {
	year                   int
	countryID              *int
	partnerID              *int
	productClassification  string
	productID              *int
	view                   string
	groupID                *int
}

func exploreTreemapURL(o treemapOpts) (string, error) {
	params := []string{fmt.Sprintf("year=%d", o.year)}
	switch {
	case o.groupID != nil:
		params = append(params, "exporter="+groupExporterParam(*o.groupID))
	case o.countryID != nil:
		params = append(params, "exporter="+exporterParam(*o.countryID))
	}
	if o.partnerID != nil {
		params = append(params, "importer="+exporterParam(*o.partnerID))
	}
	if o.productClassification != "" && o.productID != nil {
		p, err := productParam(o.productClassification, *o.productID)
		if err != nil {
			return "", err
		}
		params = append(params, "product="+p)
	}
	if o.view != "" {
		params = append(params, "view="+o.view)
	}
	return fmt.Sprintf("%s/explore/treemap?%s", AtlasBaseURL, strings.Join(params, "&")), nil
}

func exploreOvertimeURL(year, startYear, endYear, countryID int, view string) string {
	url := fmt.Sprintf("%s/explore/overtime?year=%d&startYear=%d&endYear=%d&exporter=%s",
		AtlasBaseURL, year, startYear, endYear, exporterParam(countryID))
	if view != "" {
		url += "&view=" + view
	}
	return url
}

func exploreMarketshareURL(year, startYear, endYear, countryID int) string {
	return fmt.Sprintf("%s/explore/marketshare?year=%d&startYear=%d&endYear=%d&exporter=%s",
		AtlasBaseURL, year, startYear, endYear, exporterParam(countryID))
}

func exploreProductspaceURL(year, countryID int) string {
	return fmt.Sprintf("%s/explore/productspace?year=%d&exporter=%s", AtlasBaseURL, year, exporterParam(countryID))
}

func exploreFeasibilityURL(year, countryID int) string {
	return fmt.Sprintf("%s/explore/feasibility?year=%d&exporter=%s", AtlasBaseURL, year, exporterParam(countryID))
}

func exploreFeasibilityTableURL(year, countryID, productLevel int) string {
	return fmt.Sprintf("%s/explore/feasibility/table?year=%d&exporter=%s&productLevel=%d",
		AtlasBaseURL, year, exporterParam(countryID), productLevel)
}

// --- Query-type handlers ---

type handler func(p Params) ([]Link, error)

func handleCountryProfile(p Params) ([]Link, error) {
	return []Link{{
		URL: CountryPageURL(p.CountryID, ""), Label: p.countryName() + " — Country Profile",
		Type: CountryPage, ResolutionNotes: p.ResolutionNotes,
	}}, nil
}

func handleCountryLookback(p Params) ([]Link, error) {
	name := p.countryName()
	year, startYear, endYear := p.yearRange()
	return []Link{
		{URL: CountryPageURL(p.CountryID, "growth-dynamics"), Label: name + " — Growth Dynamics", Type: CountryPage, ResolutionNotes: p.ResolutionNotes},
		{URL: exploreOvertimeURL(year, startYear, endYear, p.CountryID, ""), Label: fmt.Sprintf("%s — Trade Over Time (%d–%d)", name, startYear, endYear), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes},
	}, nil
}

func handleNewProducts(p Params) ([]Link, error) {
	return []Link{{URL: CountryPageURL(p.CountryID, "new-products"), Label: p.countryName() + " — New Products", Type: CountryPage, ResolutionNotes: p.ResolutionNotes}}, nil
}

func handleCountryYear(p Params) ([]Link, error) {
	return []Link{{URL: CountryPageURL(p.CountryID, ""), Label: p.countryName() + " — Country Profile", Type: CountryPage, ResolutionNotes: p.ResolutionNotes}}, nil
}

func handleTreemapProducts(p Params) ([]Link, error) {
	name := p.countryName()
	year := p.year()
	url, err := exploreTreemapURL(treemapOpts{year: year, countryID: &p.CountryID})
	if err != nil {
		return nil, err
	}
	return []Link{
		{URL: url, Label: fmt.Sprintf("%s — Export Basket (%d)", name, year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes},
		{URL: CountryPageURL(p.CountryID, "export-basket"), Label: name + " — Export Basket", Type: CountryPage, ResolutionNotes: p.ResolutionNotes},
	}, nil
}

func handleTreemapPartners(p Params) ([]Link, error) {
	year := p.year()
	url, err := exploreTreemapURL(treemapOpts{year: year, countryID: &p.CountryID, view: "markets"})
	if err != nil {
		return nil, err
	}
	return []Link{{URL: url, Label: fmt.Sprintf("%s — Trade Partners (%d)", p.countryName(), year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes}}, nil
}

func handleTreemapBilateral(p Params) ([]Link, error) {
	year := p.year()
	url, err := exploreTreemapURL(treemapOpts{year: year, countryID: &p.CountryID, partnerID: &p.PartnerID})
	if err != nil {
		return nil, err
	}
	return []Link{{
		URL:             url,
		Label:           fmt.Sprintf("%s → %s (%d)", p.countryName(), p.partnerName(), year),
		Type:            ExplorePage,
		ResolutionNotes: p.ResolutionNotes,
	}}, nil
}

func handleProductInfo(p Params) ([]Link, error) {
	year := p.year()
	cls := p.productClassification()
	url, err := exploreTreemapURL(treemapOpts{year: year, productClassification: cls, productID: &p.ProductID})
	if err != nil {
		return nil, err
	}
	return []Link{{URL: url, Label: fmt.Sprintf("%s — Global Trade (%d)", p.productName(), year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes}}, nil
}

func handleExploreBilateral(p Params) ([]Link, error) {
	return handleTreemapBilateral(p)
}

func handleExploreGroup(p Params) ([]Link, error) {
	if p.GroupID == nil {
		return nil, nil
	}
	year := p.year()
	groupName := p.GroupName
	if groupName == "" {
		groupName = fmt.Sprintf("Group %d", *p.GroupID)
	}
	url, err := exploreTreemapURL(treemapOpts{year: year, groupID: p.GroupID})
	if err != nil {
		return nil, err
	}
	return []Link{{URL: url, Label: fmt.Sprintf("%s — Exports (%d)", groupName, year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes}}, nil
}

func handleOvertimeProducts(p Params) ([]Link, error) {
	name := p.countryName()
	year, startYear, endYear := p.yearRange()
	treemapURL, err := exploreTreemapURL(treemapOpts{year: year, countryID: &p.CountryID})
	if err != nil {
		return nil, err
	}
	return []Link{
		{URL: exploreOvertimeURL(year, startYear, endYear, p.CountryID, ""), Label: fmt.Sprintf("%s — Trade Over Time (%d–%d)", name, startYear, endYear), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes},
		{URL: treemapURL, Label: fmt.Sprintf("%s — Export Basket (%d)", name, year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes},
	}, nil
}

func handleOvertimePartners(p Params) ([]Link, error) {
	name := p.countryName()
	year, startYear, endYear := p.yearRange()
	return []Link{{
		URL:             exploreOvertimeURL(year, startYear, endYear, p.CountryID, "markets"),
		Label:           fmt.Sprintf("%s — Partners Over Time (%d–%d)", name, startYear, endYear),
		Type:            ExplorePage,
		ResolutionNotes: p.ResolutionNotes,
	}}, nil
}

func handleMarketshare(p Params) ([]Link, error) {
	name := p.countryName()
	year, startYear, endYear := p.yearRange()
	return []Link{{
		URL:             exploreMarketshareURL(year, startYear, endYear, p.CountryID),
		Label:           fmt.Sprintf("%s — Global Market Share (%d–%d)", name, startYear, endYear),
		Type:            ExplorePage,
		ResolutionNotes: p.ResolutionNotes,
	}}, nil
}

func handleProductSpace(p Params) ([]Link, error) {
	name := p.countryName()
	year := p.year()
	return []Link{
		{URL: exploreProductspaceURL(year, p.CountryID), Label: fmt.Sprintf("%s — Product Space (%d)", name, year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes},
		{URL: CountryPageURL(p.CountryID, "export-complexity"), Label: name + " — Export Complexity", Type: CountryPage, ResolutionNotes: p.ResolutionNotes},
	}, nil
}

func handleFeasibility(p Params) ([]Link, error) {
	name := p.countryName()
	year := p.year()
	return []Link{
		{URL: exploreFeasibilityURL(year, p.CountryID), Label: fmt.Sprintf("%s — Growth Opportunities (%d)", name, year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes},
		{URL: exploreFeasibilityTableURL(year, p.CountryID, p.productLevel()), Label: fmt.Sprintf("%s — Growth Opportunities Table (%d)", name, year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes},
	}, nil
}

func handleFeasibilityTable(p Params) ([]Link, error) {
	name := p.countryName()
	year := p.year()
	return []Link{{
		URL:             exploreFeasibilityTableURL(year, p.CountryID, p.productLevel()),
		Label:           fmt.Sprintf("%s — Growth Opportunities Table (%d)", name, year),
		Type:            ExplorePage,
		ResolutionNotes: p.ResolutionNotes,
	}}, nil
}

// handleGrowthOpportunities is the country-page growth-opportunities link,
// with a frontier-country fallback to the Explore feasibility page.
func handleGrowthOpportunities(p Params) ([]Link, error) {
	name := p.countryName()
	year := p.year()
	if IsFrontierCountry(p.CountryID) {
		return []Link{{URL: exploreFeasibilityURL(year, p.CountryID), Label: fmt.Sprintf("%s — Growth Opportunities (%d)", name, year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes}}, nil
	}
	return []Link{{URL: CountryPageURL(p.CountryID, "growth-opportunities"), Label: name + " — Growth Opportunities", Type: CountryPage, ResolutionNotes: p.ResolutionNotes}}, nil
}

// handleProductTable is the country-page product-table link, with a
// frontier-country fallback to the Explore feasibility table page.
func handleProductTable(p Params) ([]Link, error) {
	name := p.countryName()
	year := p.year()
	level := p.productLevel()
	if IsFrontierCountry(p.CountryID) {
		return []Link{{URL: exploreFeasibilityTableURL(year, p.CountryID, level), Label: fmt.Sprintf("%s — Growth Opportunities Table (%d)", name, year), Type: ExplorePage, ResolutionNotes: p.ResolutionNotes}}, nil
	}
	return []Link{{URL: CountryPageURL(p.CountryID, "product-table"), Label: name + " — Product Table", Type: CountryPage, ResolutionNotes: p.ResolutionNotes}}, nil
}

// queryTypeHandlers is the closed dispatch table from GraphQL query type to
// link builder. Query types absent here (e.g. "global_datum",
// "explore_data_availability", "reject") produce no links.
var queryTypeHandlers = map[string]handler{
	"country_profile":      handleCountryProfile,
	"country_lookback":     handleCountryLookback,
	"new_products":         handleNewProducts,
	"country_year":         handleCountryYear,
	"growth_opportunities":  handleGrowthOpportunities,
	"product_table":        handleProductTable,
	"treemap_products":     handleTreemapProducts,
	"treemap_partners":     handleTreemapPartners,
	"treemap_bilateral":    handleTreemapBilateral,
	"product_info":         handleProductInfo,
	"explore_bilateral":    handleExploreBilateral,
	"explore_group":        handleExploreGroup,
	"overtime_products":    handleOvertimeProducts,
	"overtime_partners":    handleOvertimePartners,
	"marketshare":          handleMarketshare,
	"product_space":        handleProductSpace,
	"feasibility":          handleFeasibility,
	"feasibility_table":    handleFeasibilityTable,
}

// Generate dispatches queryType to its handler and returns the resulting
// links. Unknown query types (including "global_datum",
// "explore_data_availability", and "reject") return an empty slice and no
// error — they simply have no associated presentation page.
func Generate(queryType string, params Params) ([]Link, error) {
	h, ok := queryTypeHandlers[queryType]
	if !ok {
		return nil, nil
	}
	return h(params)
}
