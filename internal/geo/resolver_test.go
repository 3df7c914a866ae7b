package geo

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"

	cmap "github.com/orcaman/concurrent-map/v2"
)

func newTestResolver(strategies ...lookupFunc) *Resolver {
	return &Resolver{
		strategies: strategies,
		cache:      cmap.New[string](),
	}
}

func TestResolveWithoutDatabase(t *testing.T) {
	r := Open(nil)
	defer r.Close()

	if got := r.Resolve("203.0.113.7"); got != CountryNoDB {
		t.Fatalf("Resolve without database = %q, want %q", got, CountryNoDB)
	}
	// Sentinel should come straight from the cache on repeat.
	if got := r.Resolve("203.0.113.7"); got != CountryNoDB {
		t.Fatalf("cached Resolve without database = %q, want %q", got, CountryNoDB)
	}
}

func TestResolveCachesResult(t *testing.T) {
	var calls int32
	r := newTestResolver(func(ip net.IP) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "Narnia", nil
	})

	for i := 0; i < 3; i++ {
		if got := r.Resolve("203.0.113.7"); got != "Narnia" {
			t.Fatalf("Resolve #%d = %q, want %q", i, got, "Narnia")
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("strategy invoked %d times, want 1", n)
	}
}

func TestResolveStrategyOrder(t *testing.T) {
	var secondCalled bool
	r := newTestResolver(
		func(ip net.IP) (string, error) { return "", errNotInDatabase },
		func(ip net.IP) (string, error) { secondCalled = true; return "Atlantis", nil },
	)
	if got := r.Resolve("203.0.113.7"); got != "Atlantis" {
		t.Fatalf("Resolve = %q, want fallback strategy result %q", got, "Atlantis")
	}
	if !secondCalled {
		t.Error("fallback strategy was not consulted after primary failure")
	}

	// A successful primary lookup must short-circuit the chain.
	var fallbackCalled bool
	r = newTestResolver(
		func(ip net.IP) (string, error) { return "Oz", nil },
		func(ip net.IP) (string, error) { fallbackCalled = true; return "", errNotInDatabase },
	)
	if got := r.Resolve("198.51.100.1"); got != "Oz" {
		t.Fatalf("Resolve = %q, want primary strategy result %q", got, "Oz")
	}
	if fallbackCalled {
		t.Error("fallback strategy consulted despite primary success")
	}
}

func TestResolveCachesFailureSentinel(t *testing.T) {
	var calls int32
	r := newTestResolver(func(ip net.IP) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errNotInDatabase
	})

	if got := r.Resolve("203.0.113.7"); got != CountryUnknown {
		t.Fatalf("Resolve = %q, want %q", got, CountryUnknown)
	}
	if got := r.Resolve("203.0.113.7"); got != CountryUnknown {
		t.Fatalf("repeat Resolve = %q, want %q", got, CountryUnknown)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("failing strategy invoked %d times, want 1", n)
	}
}

func TestResolveConcurrentSingleLookup(t *testing.T) {
	var calls int32
	r := newTestResolver(func(ip net.IP) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "Wakanda", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.Resolve("203.0.113.7"); got != "Wakanda" {
				t.Errorf("Resolve = %q, want %q", got, "Wakanda")
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("strategy invoked %d times under contention, want 1", n)
	}
}

func TestCityRecordCountryDerivation(t *testing.T) {
	var rec cityRecord
	rec.Country.Names = map[string]string{"en": "Narnia"}
	rec.City.Names = map[string]string{"en": "Cair Paravel"}
	if name, err := nameFromCityRecord(rec); err != nil || name != "Narnia" {
		t.Fatalf("nameFromCityRecord = %q, %v; want the country name", name, err)
	}

	// A record with no country name still yields its city name.
	rec = cityRecord{}
	rec.City.Names = map[string]string{"en": "Cair Paravel"}
	if name, err := nameFromCityRecord(rec); err != nil || name != "Cair Paravel" {
		t.Fatalf("nameFromCityRecord = %q, %v; want the city fallback", name, err)
	}

	rec = cityRecord{}
	if _, err := nameFromCityRecord(rec); err == nil {
		t.Fatal("nameless record should not resolve")
	}
}

func TestResolveDistinctAddresses(t *testing.T) {
	r := newTestResolver(func(ip net.IP) (string, error) {
		if ip.Equal(net.ParseIP("203.0.113.7")) {
			return "Narnia", nil
		}
		return "Atlantis", nil
	})

	if got := r.Resolve("203.0.113.7"); got != "Narnia" {
		t.Fatalf("Resolve(203.0.113.7) = %q, want Narnia", got)
	}
	if got := r.Resolve("198.51.100.1"); got != "Atlantis" {
		t.Fatalf("Resolve(198.51.100.1) = %q, want Atlantis", got)
	}
}
