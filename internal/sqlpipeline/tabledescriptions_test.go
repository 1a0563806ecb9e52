package sqlpipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTablesForSchemas_OrderInvariant(t *testing.T) {
	a := ValidTablesForSchemas([]string{"hs92", "sitc"})
	b := ValidTablesForSchemas([]string{"sitc", "hs92"})
	assert.Equal(t, a, b)
}

func TestValidTablesForSchemas_IncludesClassificationTables(t *testing.T) {
	valid := ValidTablesForSchemas([]string{"hs92"})
	assert.True(t, valid["classification.location_country"])
	assert.True(t, valid["classification.product_hs92"])
	assert.True(t, valid["hs92.country_product_year_4"])
}

func TestValidTablesForSchemas_ExcludesGroupAggregates(t *testing.T) {
	valid := ValidTablesForSchemas([]string{"hs92"})
	assert.False(t, valid["hs92.group_group_product_year_4"])
}

func TestClassificationTablesForSchemas_NoDuplicateCountryTable(t *testing.T) {
	tables := classificationTablesForSchemas([]string{"hs92", "hs12"})
	count := 0
	for _, tbl := range tables {
		if tbl.TableName == "classification.location_country" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
