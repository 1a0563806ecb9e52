package sqlpipeline

// ExampleQuery is one few-shot question/SQL pair fed to generate_sql's
// prompt, mirroring original_source generate_query.py's
// load_example_queries (SPEC_FULL.md "Text-to-SQL few-shot example
// library" — a representative static set, not the original's full data
// directory of example files).
type ExampleQuery struct {
	Question string
	Query    string
}

// exampleQueries is the static few-shot library bound into every SQL
// generation prompt.
var exampleQueries = []ExampleQuery{
	{
		Question: "What were the top 5 exports of Brazil in 2020?",
		Query: "SELECT cpy.product_id, p.name_short_en, cpy.export_value\n" +
			"FROM hs92.country_product_year_4 cpy\n" +
			"JOIN classification.location_country c ON cpy.country_id = c.country_id\n" +
			"JOIN classification.product_hs92 p ON cpy.product_id = p.product_id\n" +
			"WHERE c.iso3_code = 'BRA' AND cpy.year = 2020\n" +
			"ORDER BY cpy.export_value DESC\n" +
			"LIMIT 5;",
	},
	{
		Question: "How has India's export complexity (ECI) changed since 2010?",
		Query: "SELECT cy.year, cy.eci\n" +
			"FROM hs92.country_year cy\n" +
			"JOIN classification.location_country c ON cy.country_id = c.country_id\n" +
			"WHERE c.iso3_code = 'IND' AND cy.year >= 2010\n" +
			"ORDER BY cy.year;",
	},
	{
		Question: "What are the main destinations for Kenyan coffee exports?",
		Query: "SELECT ccpy.partner_country_id, c2.name_short_en, ccpy.export_value\n" +
			"FROM hs92.country_country_product_year_4 ccpy\n" +
			"JOIN classification.location_country c1 ON ccpy.country_id = c1.country_id\n" +
			"JOIN classification.location_country c2 ON ccpy.partner_country_id = c2.country_id\n" +
			"JOIN classification.product_hs92 p ON ccpy.product_id = p.product_id\n" +
			"WHERE c1.iso3_code = 'KEN' AND p.code = '0901'\n" +
			"ORDER BY ccpy.export_value DESC\n" +
			"LIMIT 10;",
	},
	{
		Question: "What services did the United States export in 2021?",
		Query: "SELECT cpy.product_id, p.name_short_en, cpy.export_value\n" +
			"FROM services_unilateral.country_product_year cpy\n" +
			"JOIN classification.location_country c ON cpy.country_id = c.country_id\n" +
			"JOIN classification.product_services_unilateral p ON cpy.product_id = p.product_id\n" +
			"WHERE c.iso3_code = 'USA' AND cpy.year = 2021\n" +
			"ORDER BY cpy.export_value DESC;",
	},
}
