package tools

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	placesInputFormat = `{"city": "...", "interests": "beach,temple"}`
	maxPlaces         = 5
)

type PlaceRequest struct {
	City      string
	Interests []string
	// RawInterests is what the caller sent, echoed back in the fallback note.
	RawInterests string
}

type PlaceSummary struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
}

type PlaceDiscovery struct {
	Places []PlaceSummary `json:"places"`
	Count  int            `json:"count"`
	Note   string         `json:"note"`
}

func parsePlaceRequest(params map[string]any) (PlaceRequest, error) {
	req := PlaceRequest{City: stringParam(params, "city", "")}
	switch v := params["interests"].(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		req.RawInterests = strings.Join(parts, ",")
	case []string:
		req.RawInterests = strings.Join(v, ",")
	default:
		req.RawInterests = stringParam(params, "interests", "")
	}
	req.Interests = splitInterests(req.RawInterests)
	return req, requireStrings(field{"city", req.City})
}

func splitInterests(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DiscoverPlaces returns up to five places in a city, best rated first. An
// interest filter that matches nothing falls back to every place in the city.
func DiscoverPlaces(places []Place, req PlaceRequest) (PlaceDiscovery, error) {
	var inCity []Place
	for _, p := range places {
		if strings.EqualFold(strings.TrimSpace(p.City), req.City) {
			inCity = append(inCity, p)
		}
	}
	if len(inCity) == 0 {
		return PlaceDiscovery{}, notFoundErrorf("No places found in %s. Try a different city.", req.City)
	}

	selected := inCity
	note := fmt.Sprintf("Showing top-rated places in %s", req.City)
	if len(req.Interests) > 0 {
		var matched []Place
		for _, p := range inCity {
			if slices.Contains(req.Interests, strings.ToLower(strings.TrimSpace(p.Type))) {
				matched = append(matched, p)
			}
		}
		if len(matched) == 0 {
			note = fmt.Sprintf("No places matched interests '%s', showing all places", req.RawInterests)
		} else {
			selected = matched
			note = fmt.Sprintf("Found %d places matching interests", len(matched))
		}
	}

	sorted := append([]Place(nil), selected...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating > sorted[j].Rating })
	if len(sorted) > maxPlaces {
		sorted = sorted[:maxPlaces]
	}

	out := PlaceDiscovery{Places: make([]PlaceSummary, 0, len(sorted)), Note: note}
	for _, p := range sorted {
		out.Places = append(out.Places, PlaceSummary{
			Name: p.Name, Type: p.Type, Rating: p.Rating, Description: p.Description,
		})
	}
	out.Count = len(out.Places)
	return out, nil
}

type PlacesDiscovery struct{ store *Store }

func NewPlacesDiscovery(store *Store) *PlacesDiscovery { return &PlacesDiscovery{store: store} }

func (t *PlacesDiscovery) Name() string  { return "places_discovery" }
func (t *PlacesDiscovery) Title() string { return "Discover Places" }
func (t *PlacesDiscovery) Description() string {
	return "Lists up to 5 top-rated attractions in a city, optionally filtered by comma-separated interests (place types such as beach, temple, fort)."
}

func (t *PlacesDiscovery) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"city":      {Type: "string"},
			"interests": {Type: "string"},
		},
		Required: []string{"city"},
	}
}

func (t *PlacesDiscovery) Run(ctx context.Context, input RawInput) (map[string]any, error) {
	params, err := input.Params(placesInputFormat)
	if err != nil {
		return nil, err
	}
	req, err := parsePlaceRequest(params)
	if err != nil {
		return nil, err
	}
	found, err := DiscoverPlaces(t.store.Dataset().Places, req)
	if err != nil {
		return nil, err
	}
	return toMap(found), nil
}
