package domain

import "strings"

// A client or prospect to be visited.
// Address fields are free text and preserved verbatim for output.
// Coords is nil until the address has been resolved by a geocoder.
type VisitTarget struct {
	TargetID   string
	Name       string
	Street     string
	PostalCode string
	City       string
	Coords     *Coordinates
}

// Resolved reports whether the target carries a usable coordinate.
func (t VisitTarget) Resolved() bool {
	return t.Coords != nil && t.Coords.Valid()
}

// FullAddress joins the non-empty address parts and the country with ", ".
func (t VisitTarget) FullAddress(country string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{t.Street, t.PostalCode, t.City, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
