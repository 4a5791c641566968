package immo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Departments returns the top level of the administrative hierarchy.
func (c *Client) Departments(ctx context.Context) ([]Department, error) {
	var deps []Department
	if err := c.get(ctx, "/locations/departments", nil, &deps); err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}

	return deps, nil
}

// Communes returns the communes of a department.
func (c *Client) Communes(ctx context.Context, departmentID int) ([]Commune, error) {
	params := Params{"department_id": strconv.Itoa(departmentID)}

	var communes []Commune
	if err := c.get(ctx, "/locations/communes", params, &communes); err != nil {
		return nil, fmt.Errorf("listing communes: %w", err)
	}

	return communes, nil
}

// Arrondissements returns the arrondissements of a commune.
func (c *Client) Arrondissements(ctx context.Context, communeID int) ([]Arrondissement, error) {
	params := Params{"commune_id": strconv.Itoa(communeID)}

	var arrs []Arrondissement
	if err := c.get(ctx, "/locations/arrondissements", params, &arrs); err != nil {
		return nil, fmt.Errorf("listing arrondissements: %w", err)
	}

	return arrs, nil
}

// Towns returns the towns of an arrondissement.
func (c *Client) Towns(ctx context.Context, arrondissementID int) ([]Town, error) {
	params := Params{"arrondissement_id": strconv.Itoa(arrondissementID)}

	var towns []Town
	if err := c.get(ctx, "/locations/towns", params, &towns); err != nil {
		return nil, fmt.Errorf("listing towns: %w", err)
	}

	return towns, nil
}

// LocationMatch is one hit from the location search endpoint.
type LocationMatch struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// SearchLocations queries the server's location search.
func (c *Client) SearchLocations(ctx context.Context, query string) ([]LocationMatch, error) {
	var matches []LocationMatch
	if err := c.get(ctx, "/locations/search", Params{"q": query}, &matches); err != nil {
		return nil, fmt.Errorf("searching locations: %w", err)
	}

	return matches, nil
}

// foldTransformer strips combining marks after NFD decomposition, so
// "Ouémé" and "Oueme" compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldName lowercases a location name and strips its accents for
// comparison. Division names are French; users type them unaccented.
func FoldName(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}

	return strings.ToLower(folded)
}

// MatchesName reports whether the candidate location name matches the
// query, ignoring case and accents.
func MatchesName(name, query string) bool {
	return strings.Contains(FoldName(name), FoldName(query))
}

// FilterCommunes returns the communes whose names match the query,
// ignoring case and accents. Used for interactive pickers where a
// round trip to the search endpoint per keystroke would be wasteful.
func FilterCommunes(communes []Commune, query string) []Commune {
	if query == "" {
		return communes
	}

	var out []Commune

	for _, c := range communes {
		if MatchesName(c.Name, query) {
			out = append(out, c)
		}
	}

	return out
}
