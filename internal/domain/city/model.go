package city

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName    = errors.New("city name cannot be empty")
	ErrEmptyCountry = errors.New("country cannot be empty")
)

// City is a location used to match students with nearby coaches and courts.
type City struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Validate checks if the City has valid data.
// PRE: City struct is populated
// POST: Returns nil if valid, error otherwise
func (c *City) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Country) == "" {
		return ErrEmptyCountry
	}
	return nil
}

// Label renders "Name, Country".
func (c City) Label() string {
	return c.Name + ", " + c.Country
}

// Defaults is the list seeded into an empty database.
var Defaults = []City{
	{Name: "Auckland", Country: "New Zealand"},
	{Name: "Wellington", Country: "New Zealand"},
	{Name: "Christchurch", Country: "New Zealand"},
	{Name: "Sydney", Country: "Australia"},
	{Name: "Melbourne", Country: "Australia"},
}
