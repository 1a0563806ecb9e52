package graphqlpipeline

import (
	"strconv"
	"strings"
)

// idPrefixes are the Country-Pages API's string-id prefixes. stripIDPrefix
// removes one of these from a value that might already carry it (a guard
// against a catalog entry whose code field was stored pre-prefixed),
// mirroring original_source atlas_links.py's _strip_id_prefix.
var idPrefixes = []string{"location-", "product-HS92-", "product-HS12-", "product-HS-", "group-"}

func stripIDPrefix(s string) string {
	for _, p := range idPrefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimPrefix(s, p)
		}
	}
	return s
}

// resolvedParams carries every entity/scalar resolve_ids may have
// extracted, ready to be formatted for the chosen API target.
type resolvedParams struct {
	Country      ResolvedEntity
	Partner      ResolvedEntity
	Product      ResolvedEntity
	ProductClass string
	Group        ResolvedEntity
	GroupType    string
	Year         *int
	YearMin      *int
	YearMax      *int
	ProductLevel *int
	LookbackYears *int
	ServicesClass string
}

// formatIDsForAPI builds GraphQL variables for the chosen target (spec.md
// §4.6 node 4): explore wants bare integer ids, country_pages wants
// prefixed string ids with the numeric keys removed entirely.
func formatIDsForAPI(target APITarget, rp resolvedParams) map[string]any {
	vars := map[string]any{}

	productPrefix := "product-HS92-"
	switch strings.ToUpper(rp.ProductClass) {
	case "HS12":
		productPrefix = "product-HS12-"
	case "SITC":
		productPrefix = "product-SITC-"
	}

	switch target {
	case APITargetCountryPages:
		if rp.Country.Found {
			vars["location"] = "location-" + strconv.Itoa(rp.Country.ID)
		}
		if rp.Partner.Found {
			vars["partnerLocation"] = "location-" + strconv.Itoa(rp.Partner.ID)
		}
		if rp.Product.Found {
			vars["product"] = productPrefix + strconv.Itoa(rp.Product.ID)
		}
		if rp.Group.Found {
			vars["group"] = "group-" + strconv.Itoa(rp.Group.ID)
		}
	default: // APITargetExplore
		if rp.Country.Found {
			vars["countryId"] = rp.Country.ID
		}
		if rp.Partner.Found {
			vars["partnerId"] = rp.Partner.ID
		}
		if rp.Product.Found {
			vars["productId"] = rp.Product.ID
		}
		if rp.Group.Found {
			vars["groupId"] = rp.Group.ID
		}
	}

	if rp.Year != nil {
		vars["year"] = *rp.Year
	}
	if rp.YearMin != nil {
		vars["yearMin"] = *rp.YearMin
	}
	if rp.YearMax != nil {
		vars["yearMax"] = *rp.YearMax
	}
	if rp.ProductLevel != nil {
		vars["productLevel"] = *rp.ProductLevel
	}
	if rp.LookbackYears != nil {
		vars["lookbackYears"] = *rp.LookbackYears
	}
	if rp.ServicesClass != "" {
		vars["servicesClass"] = rp.ServicesClass
	}
	return vars
}

