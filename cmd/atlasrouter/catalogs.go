package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shreyasgm/atlas-router/internal/cachekey"
	"github.com/shreyasgm/atlas-router/internal/catalog"
	"github.com/shreyasgm/atlas-router/internal/graphqlpipeline"
)

// newCountriesCache builds the countries CatalogCache, fetching from
// classification.location_country (internal/sqlpipeline/tabledescriptions.go
// names this as the shared country lookup table joined against every
// data schema).
func newCountriesCache(pool *pgxpool.Pool, ttl time.Duration) *catalog.Cache {
	c := catalog.New("countries", ttl)
	c.AddIndex("code", func(e any) string {
		return strings.ToUpper(e.(graphqlpipeline.CountryEntity).ISO3)
	}, cachekey.Normalize)
	c.AddIndex("name", func(e any) string {
		return e.(graphqlpipeline.CountryEntity).Name
	}, cachekey.Normalize)
	c.AddIndex("id", func(e any) string {
		return fmt.Sprintf("%d", e.(graphqlpipeline.CountryEntity).ID)
	}, cachekey.Normalize)
	c.SetFetcher(func(ctx context.Context) ([]any, error) {
		rows, err := pool.Query(ctx, `
			SELECT country_id, name_short_en, iso3_code
			FROM classification.location_country
			WHERE iso3_code IS NOT NULL`)
		if err != nil {
			return nil, fmt.Errorf("fetch countries: %w", err)
		}
		defer rows.Close()

		var out []any
		for rows.Next() {
			var e graphqlpipeline.CountryEntity
			if err := rows.Scan(&e.ID, &e.Name, &e.ISO3); err != nil {
				return nil, fmt.Errorf("scan country: %w", err)
			}
			out = append(out, e)
		}
		return out, rows.Err()
	})
	return c
}

// newProductsCache builds the goods products CatalogCache, fetching from
// classification.product_hs92 (the default goods schema; spec.md §3 lists
// hs92 first among override_schema's valid values).
func newProductsCache(pool *pgxpool.Pool, ttl time.Duration) *catalog.Cache {
	c := catalog.New("products", ttl)
	c.AddIndex("code", func(e any) string {
		return e.(graphqlpipeline.ProductEntity).Code
	}, cachekey.Normalize)
	c.AddIndex("name", func(e any) string {
		return e.(graphqlpipeline.ProductEntity).Name
	}, cachekey.Normalize)
	c.AddIndex("id", func(e any) string {
		return fmt.Sprintf("%d", e.(graphqlpipeline.ProductEntity).ID)
	}, cachekey.Normalize)
	c.SetFetcher(func(ctx context.Context) ([]any, error) {
		rows, err := pool.Query(ctx, `
			SELECT product_id, code, name_short_en
			FROM classification.product_hs92`)
		if err != nil {
			return nil, fmt.Errorf("fetch products: %w", err)
		}
		defer rows.Close()

		var out []any
		for rows.Next() {
			e := graphqlpipeline.ProductEntity{Schema: "hs92"}
			if err := rows.Scan(&e.ID, &e.Code, &e.Name); err != nil {
				return nil, fmt.Errorf("scan product: %w", err)
			}
			out = append(out, e)
		}
		return out, rows.Err()
	})
	return c
}

// newServicesCache builds the services products CatalogCache, fetching
// from classification.product_services_unilateral.
func newServicesCache(pool *pgxpool.Pool, ttl time.Duration) *catalog.Cache {
	c := catalog.New("services", ttl)
	c.AddIndex("code", func(e any) string {
		return e.(graphqlpipeline.ProductEntity).Code
	}, cachekey.Normalize)
	c.AddIndex("name", func(e any) string {
		return e.(graphqlpipeline.ProductEntity).Name
	}, cachekey.Normalize)
	c.AddIndex("id", func(e any) string {
		return fmt.Sprintf("%d", e.(graphqlpipeline.ProductEntity).ID)
	}, cachekey.Normalize)
	c.SetFetcher(func(ctx context.Context) ([]any, error) {
		rows, err := pool.Query(ctx, `
			SELECT product_id, code, name_short_en
			FROM classification.product_services_unilateral`)
		if err != nil {
			return nil, fmt.Errorf("fetch services: %w", err)
		}
		defer rows.Close()

		var out []any
		for rows.Next() {
			e := graphqlpipeline.ProductEntity{Schema: "services_unilateral"}
			if err := rows.Scan(&e.ID, &e.Code, &e.Name); err != nil {
				return nil, fmt.Errorf("scan service: %w", err)
			}
			out = append(out, e)
		}
		return out, rows.Err()
	})
	return c
}
