package gazetteer

import (
	"strings"
)

// Location is the resolved administrative unit of an address. Either field is
// nil when no curated entry matched.
type Location struct {
	City     *string
	District *string
}

// Resolve maps a reverse-geocoded address onto a canonical {city, district}
// pair. parts is the comma-split address in the geocoder's order, assumed
// most-specific-first; when empty it is derived from rawAddress.
//
// City detection scans parts from the end, least specific first, since the
// city segment sits near the end of a geocoder label and a street named after
// another city must not outrank it. Without a city the whole result is empty.
// District
// resolution then scans parts left to right through four passes per part:
// urban districts (with numbered-district normalization for Hồ Chí Minh City),
// counties, towns (capital only) and municipal cities (Hồ Chí Minh City only).
// The first hit stops the scan.
func (g *Gazetteer) Resolve(rawAddress string, parts []string) Location {
	if len(parts) == 0 {
		parts = SplitAddress(rawAddress)
	}

	city, units := g.detectCity(parts)
	if city == "" {
		return Location{}
	}

	loc := Location{City: &city}
	for _, part := range parts {
		if d, ok := matchDistrict(part, city, units.Districts); ok {
			loc.District = &d
			return loc
		}
		if c, ok := matchContains(part, units.Counties); ok {
			d := "Huyện " + c
			loc.District = &d
			return loc
		}
		if city == CityHanoi {
			if t, ok := matchContains(part, units.Towns); ok {
				d := "Thị xã " + t
				loc.District = &d
				return loc
			}
		}
		if city == CityHCMC {
			if s, ok := matchContains(part, units.SpecialCities); ok {
				d := "TP " + s
				loc.District = &d
				return loc
			}
		}
	}

	return loc
}

// SplitAddress splits a free-text geocoder label into its comma-separated
// segments, trimmed, empty segments dropped.
func SplitAddress(raw string) []string {
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// detectCity scans parts back to front so the least specific segment is
// checked first. Streets named after other cities ("Xa lộ Hà Nội" in Hồ Chí
// Minh City) sit in the specific segments and must not win over the city
// segment at the end.
func (g *Gazetteer) detectCity(parts []string) (string, CityUnits) {
	for i := len(parts) - 1; i >= 0; i-- {
		folded := fold(parts[i])
		for _, city := range g.order {
			units := g.cities[city]
			for _, alias := range units.Aliases {
				if folded == alias || strings.Contains(folded, alias) {
					return city, units
				}
			}
		}
	}
	return "", CityUnits{}
}

// matchDistrict matches one address part against the urban district list.
// In Hồ Chí Minh City the numbered forms "Quận 7", "Q.7", "Q7" and a bare "7"
// are equivalent; a bare digit can therefore false-positive on unrelated
// numbers in the address, a known limitation carried over deliberately.
func matchDistrict(part, city string, districts []string) (string, bool) {
	folded := fold(part)

	if city == CityHCMC {
		if n, ok := districtNumber(folded); ok {
			canonical := "Quận " + n
			for _, d := range districts {
				if d == canonical {
					return d, true
				}
			}
		}
	}

	for _, d := range districts {
		dl := fold(d)
		if folded == dl {
			return d, true
		}
		// Substring matching on a numbered district would let "Quận 1"
		// swallow "Quận 10", so it requires a digit boundary.
		if i := strings.Index(folded, dl); i >= 0 {
			if !numbered(dl) || !digitFollows(folded, i+len(dl)) {
				return d, true
			}
		}
	}

	return "", false
}

func numbered(dl string) bool {
	r := dl[len(dl)-1]
	return r >= '0' && r <= '9'
}

func digitFollows(s string, i int) bool {
	return i < len(s) && s[i] >= '0' && s[i] <= '9'
}

// districtNumber extracts the number from a numbered-district token:
// "quận 7", "q.7", "q7" or a bare "7".
func districtNumber(folded string) (string, bool) {
	s := folded
	switch {
	case strings.HasPrefix(s, "quận"):
		s = strings.TrimPrefix(s, "quận")
	case strings.HasPrefix(s, "quan"):
		s = strings.TrimPrefix(s, "quan")
	case strings.HasPrefix(s, "q."):
		s = strings.TrimPrefix(s, "q.")
	case strings.HasPrefix(s, "q"):
		s = strings.TrimPrefix(s, "q")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}

func matchContains(part string, names []string) (string, bool) {
	folded := fold(part)
	for _, n := range names {
		nl := fold(n)
		if folded == nl || strings.Contains(folded, nl) {
			return n, true
		}
	}
	return "", false
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
