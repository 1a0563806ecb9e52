package graphqlpipeline

// resolvable is the shape resolveEntity needs from a catalog entry,
// satisfied by every concrete entity type this pipeline resolves against.
type resolvable interface {
	EntityID() int
	EntityName() string
}

// CountryEntity is one country/location catalog row. Catalog caches are
// registered by the composition root with "code" (ISO alpha-3, upper-cased)
// and "name" (normalized) indexes.
type CountryEntity struct {
	ID   int
	Name string
	ISO3 string
}

func (c CountryEntity) EntityID() int      { return c.ID }
func (c CountryEntity) EntityName() string { return c.Name }

// ProductEntity is one product catalog row (goods or services), keyed by
// its classification code.
type ProductEntity struct {
	ID     int
	Name   string
	Code   string
	Schema string
}

func (p ProductEntity) EntityID() int      { return p.ID }
func (p ProductEntity) EntityName() string { return p.Name }

// GroupEntity is one region/income-group aggregate catalog row.
type GroupEntity struct {
	ID   int
	Name string
	Type string
}

func (g GroupEntity) EntityID() int      { return g.ID }
func (g GroupEntity) EntityName() string { return g.Name }
