package geo

import (
	"errors"
	"log"
	"net"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/oschwald/maxminddb-golang"
)

// Sentinel country values substituted for failed or unavailable lookups.
// Sentinels are cached like real results, so a failing address costs one
// database probe for the lifetime of the process.
const (
	CountryUnknown = "Unknown"
	CountryNoDB    = "No DB"
)

var errNotInDatabase = errors.New("address not present in database")

// countryRecord decodes the country-level fields of a GeoLite2 entry.
type countryRecord struct {
	Country struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
}

// cityRecord decodes a city-level entry. City database editions still embed
// the owning country, so the country name is derivable from them.
type cityRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
}

// lookupFunc is a single lookup strategy. It returns the resolved country
// name, or an error when this strategy cannot resolve the address.
type lookupFunc func(ip net.IP) (string, error)

// Resolver memoizes country lookups per client address for the lifetime of
// the process. The cache is unbounded and never evicted; in practice it is
// bounded by distinct-client cardinality. Resolver satisfies
// model.GeoResolver.
type Resolver struct {
	db         *maxminddb.Reader
	strategies []lookupFunc
	cache      cmap.ConcurrentMap[string, string]
}

// Open loads the first readable database from paths and returns a resolver
// backed by it. A missing or unreadable database is not fatal: the resolver
// still works, answering every lookup with the CountryNoDB sentinel and
// never touching disk.
func Open(paths []string) *Resolver {
	r := &Resolver{cache: cmap.New[string]()}
	for _, path := range paths {
		db, err := maxminddb.Open(path)
		if err != nil {
			continue
		}
		log.Printf("Loaded geo database %s (%s)", path, db.Metadata.DatabaseType)
		r.db = db
		r.strategies = []lookupFunc{r.lookupCountry, r.lookupCity}
		return r
	}
	log.Printf("No geo database available, lookups will report %q", CountryNoDB)
	return r
}

// Close releases the underlying database, if any. Cached entries stay
// valid; only uncached addresses are affected by a closed reader.
func (r *Resolver) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Resolve returns the country name for address, consulting the cache first.
// The result, sentinel or not, is stored back into the cache under the
// owning shard lock, so concurrent resolves of one address issue at most
// one underlying lookup.
func (r *Resolver) Resolve(address string) string {
	return r.cache.Upsert(address, "", func(exist bool, current, _ string) string {
		if exist {
			return current
		}
		return r.lookup(address)
	})
}

// lookup runs the strategy chain in order and takes the first success. It
// runs with the cache shard locked; the database is a locally mapped file,
// not network I/O, so the hold is short.
func (r *Resolver) lookup(address string) string {
	if len(r.strategies) == 0 {
		return CountryNoDB
	}
	ip := net.ParseIP(address)
	if ip == nil {
		return CountryUnknown
	}
	for _, strategy := range r.strategies {
		if name, err := strategy(ip); err == nil {
			return name
		}
	}
	return CountryUnknown
}

func (r *Resolver) lookupCountry(ip net.IP) (string, error) {
	var rec countryRecord
	if err := r.db.Lookup(ip, &rec); err != nil {
		return "", err
	}
	name := rec.Country.Names["en"]
	if name == "" {
		return "", errNotInDatabase
	}
	return name, nil
}

func (r *Resolver) lookupCity(ip net.IP) (string, error) {
	var rec cityRecord
	if err := r.db.Lookup(ip, &rec); err != nil {
		return "", err
	}
	return nameFromCityRecord(rec)
}

// nameFromCityRecord derives the country name from a city-level record,
// falling back to the city's own name when the record carries no
// country. That fallback is what lets the city strategy succeed on
// records the country strategy cannot name.
func nameFromCityRecord(rec cityRecord) (string, error) {
	if name := rec.Country.Names["en"]; name != "" {
		return name, nil
	}
	if name := rec.City.Names["en"]; name != "" {
		return name, nil
	}
	return "", errNotInDatabase
}
