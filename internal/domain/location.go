package domain

// Country and State carry the ISO code alongside the display name so
// addresses round-trip through the backend without a lookup.
type Country struct {
	Name    string `json:"name"`
	ISOCode string `json:"isoCode"`
}

type State struct {
	Name    string `json:"name"`
	ISOCode string `json:"isoCode"`
}

type City struct {
	Name string `json:"name"`
}

// LocationSelection is a country/state/city triple picked during checkout.
// A zero value means nothing has been selected yet.
type LocationSelection struct {
	Country *Country `json:"country"`
	State   *State   `json:"state"`
	City    *City    `json:"city"`
}

// Complete reports whether all three levels have been selected.
func (l LocationSelection) Complete() bool {
	return l.Country != nil && l.State != nil && l.City != nil
}

// Clone returns a deep copy, so billing can mirror shipping without sharing pointers.
func (l LocationSelection) Clone() LocationSelection {
	var c LocationSelection
	if l.Country != nil {
		country := *l.Country
		c.Country = &country
	}
	if l.State != nil {
		state := *l.State
		c.State = &state
	}
	if l.City != nil {
		city := *l.City
		c.City = &city
	}
	return c
}
