package model

// GeoResolver maps a client address to a country name. Implementations
// absorb lookup failures into sentinel values rather than returning errors;
// the session tracker stores whatever string comes back.
type GeoResolver interface {
	Resolve(address string) string
}
