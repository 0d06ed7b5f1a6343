package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

type oceanZone struct {
	Name        string
	Description string
}

type fishingMarker struct {
	Name string
	Lat  float64
	Lon  float64
	Type string // "harbor" or "market"
}

type restrictedArea struct {
	Name        string
	Description string
	Lat, Lon    float64
	RadiusKm    float64
}

var oceanZones = []oceanZone{
	{
		Name:        "Exclusive Economic Zone (EEZ) — India",
		Description: "India's 200 nautical mile exclusive economic zone. Fishing permitted with valid license.",
	},
	{
		Name:        "Territorial Waters",
		Description: "12 nautical miles from coastline. Traditional fishing allowed.",
	},
}

var fishingMarkers = []fishingMarker{
	{"Mumbai Fishing Harbor", 18.9485, 72.8372, "harbor"},
	{"Sassoon Docks", 18.9265, 72.8312, "market"},
	{"Versova Jetty", 19.1347, 72.8120, "harbor"},
	{"Mangalore Fishing Port", 12.8650, 74.8302, "harbor"},
	{"Kochi Fishing Harbour", 9.9370, 76.2614, "harbor"},
	{"Visakhapatnam Fishing Harbour", 17.6915, 83.2974, "harbor"},
	{"Chennai Fishing Harbour", 13.1007, 80.2945, "harbor"},
	{"Paradip Port", 20.3166, 86.6114, "harbor"},
	{"Porbandar Fisheries", 21.6417, 69.6293, "harbor"},
	{"Tuticorin Harbour", 8.7642, 78.1348, "harbor"},
	{"Veraval Fish Market", 20.9067, 70.3679, "market"},
	{"Rameswaram", 9.2876, 79.3129, "harbor"},
}

var restrictedAreas = []restrictedArea{
	{
		Name:        "Monsoon Fishing Ban Zone (West Coast)",
		Description: "Fishing banned June 1 – July 31 along west coast (mechanised boats).",
		Lat:         15.0, Lon: 72.0, RadiusKm: 200,
	},
	{
		Name:        "Monsoon Fishing Ban Zone (East Coast)",
		Description: "Fishing banned April 15 – June 14 along east coast (mechanised boats).",
		Lat:         14.0, Lon: 81.0, RadiusKm: 200,
	},
}

// haversineKm returns the great-circle distance between two points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Pow(math.Sin(dlon/2), 2)
	return 6371 * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func (r *Registry) handleMapData(ctx context.Context, args map[string]any) (string, error) {
	lat, latOK := floatArg(args, "latitude")
	lon, lonOK := floatArg(args, "longitude")
	query, _ := args["query"].(string)

	var lines []string

	switch {
	case latOK && lonOK:
		ranked := make([]fishingMarker, len(fishingMarkers))
		copy(ranked, fishingMarkers)
		sort.Slice(ranked, func(i, j int) bool {
			return haversineKm(lat, lon, ranked[i].Lat, ranked[i].Lon) <
				haversineKm(lat, lon, ranked[j].Lat, ranked[j].Lon)
		})
		if len(ranked) > 5 {
			ranked = ranked[:5]
		}

		lines = append(lines, "📍 **Nearest Fishing Locations:**")
		for _, m := range ranked {
			dist := haversineKm(lat, lon, m.Lat, m.Lon)
			lines = append(lines, fmt.Sprintf("  • %s (%s) — ~%.0f km away", m.Name, m.Type, dist))
		}

		lines = append(lines, "", "⚠️ **Restricted/Ban Zones Nearby:**")
		for _, area := range restrictedAreas {
			dist := haversineKm(lat, lon, area.Lat, area.Lon)
			if dist < area.RadiusKm+100 {
				lines = append(lines, fmt.Sprintf("  • %s: %s (~%.0f km)", area.Name, area.Description, dist))
			}
		}

	case query != "":
		q := strings.ToLower(query)
		var matches []fishingMarker
		for _, m := range fishingMarkers {
			if strings.Contains(strings.ToLower(m.Name), q) {
				matches = append(matches, m)
			}
		}
		if len(matches) == 0 {
			lines = append(lines, fmt.Sprintf("No markers found matching '%s'. Try with a broader term.", query))
			break
		}
		lines = append(lines, fmt.Sprintf("🔍 **Search results for '%s':**", query))
		for _, m := range matches {
			lines = append(lines, fmt.Sprintf("  • %s (%s) — %.4f°N, %.4f°E", m.Name, m.Type, m.Lat, m.Lon))
		}

	default:
		lines = append(lines, "🗺️ **Indian Ocean Fishing Zones:**")
		for _, z := range oceanZones {
			lines = append(lines, fmt.Sprintf("  • %s: %s", z.Name, z.Description))
		}
		lines = append(lines, "",
			fmt.Sprintf("  Total harbors/markets: %d", len(fishingMarkers)),
			fmt.Sprintf("  Known restricted areas: %d", len(restrictedAreas)))
	}

	return strings.Join(lines, "\n"), nil
}
