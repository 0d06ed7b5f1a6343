package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Indicative prices in INR per kg. Static seed data; a production
// deployment would back this with a market-prices feed.
var marketData = map[string]map[string]int{
	"Mumbai": {
		"Pomfret (Paplet)":      800,
		"Bombay Duck (Bombil)":  250,
		"Surmai (Seer Fish)":    700,
		"Rawas (Indian Salmon)": 600,
		"Prawns (Jhinga)":       500,
		"Mackerel (Bangda)":     200,
		"Hilsa (Ilish)":         1200,
	},
	"Kochi": {
		"Karimeen (Pearl Spot)": 800,
		"King Fish (Neymeen)":   600,
		"Prawns":                450,
		"Sardine (Mathi)":       150,
		"Tuna (Choora)":         350,
		"Mackerel (Ayala)":      180,
		"Seer Fish (Neymeen)":   650,
	},
	"Chennai": {
		"Seer Fish (Vanjiram)": 700,
		"Pomfret (Vavval)":     750,
		"Prawns (Eral)":        480,
		"Sardine (Mathi)":      130,
		"Tuna":                 300,
		"Crab (Nandu)":         400,
	},
	"Visakhapatnam": {
		"Pomfret":   700,
		"Prawns":    420,
		"Mackerel":  180,
		"Sardine":   120,
		"Tuna":      280,
		"Seer Fish": 650,
	},
	"Mangalore": {
		"Mackerel (Bangude)":  200,
		"Sardine (Bhoothai)":  100,
		"Pomfret":             750,
		"Prawns":              450,
		"Seer Fish (Anjal)":   680,
		"Lady Fish (Kane)":    350,
	},
	"Porbandar": {
		"Pomfret (Paplet)": 850,
		"Surmai":           720,
		"Lobster":          1500,
		"Prawns":           500,
		"Mackerel":         190,
	},
}

func marketPorts() []string {
	ports := make([]string, 0, len(marketData))
	for p := range marketData {
		ports = append(ports, p)
	}
	sort.Strings(ports)
	return ports
}

func (r *Registry) handleMarketPrices(ctx context.Context, args map[string]any) (string, error) {
	portName, _ := args["port_name"].(string)
	fishSpecies, _ := args["fish_species"].(string)

	var lines []string

	switch {
	case portName != "":
		key := matchPort(portName)
		if key == "" {
			lines = append(lines, fmt.Sprintf("No price data for '%s'. Available ports: %s",
				portName, strings.Join(marketPorts(), ", ")))
			break
		}

		lines = append(lines, fmt.Sprintf("💰 **Fish Prices at %s** (per kg):", key))
		type entry struct {
			species string
			price   int
		}
		var entries []entry
		for species, price := range marketData[key] {
			entries = append(entries, entry{species, price})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].price != entries[j].price {
				return entries[i].price > entries[j].price
			}
			return entries[i].species < entries[j].species
		})
		for _, e := range entries {
			lines = append(lines, fmt.Sprintf("  • %s: ₹%d", e.species, e.price))
		}

	case fishSpecies != "":
		q := strings.ToLower(fishSpecies)
		type hit struct {
			port    string
			species string
			price   int
		}
		var found []hit
		for _, port := range marketPorts() {
			for species, price := range marketData[port] {
				if strings.Contains(strings.ToLower(species), q) {
					found = append(found, hit{port, species, price})
				}
			}
		}
		if len(found) == 0 {
			lines = append(lines, fmt.Sprintf("No price data for '%s'. Try a broader search.", fishSpecies))
			break
		}
		sort.Slice(found, func(i, j int) bool { return found[i].price < found[j].price })
		lines = append(lines, fmt.Sprintf("💰 **Prices for '%s' across ports:**", fishSpecies))
		for _, h := range found {
			lines = append(lines, fmt.Sprintf("  • %s: %s — ₹%d/kg", h.port, h.species, h.price))
		}

	default:
		lines = append(lines, "💰 **Available Fish Markets:**")
		for _, port := range marketPorts() {
			lines = append(lines, fmt.Sprintf("  • %s (%d species tracked)", port, len(marketData[port])))
		}
		lines = append(lines, "", "Ask about a specific port or fish species for detailed prices.")
	}

	return strings.Join(lines, "\n"), nil
}

// matchPort fuzzy-matches a user-supplied port name against known ports.
func matchPort(name string) string {
	lower := strings.ToLower(name)
	for _, p := range marketPorts() {
		pl := strings.ToLower(p)
		if strings.Contains(pl, lower) || strings.Contains(lower, pl) {
			return p
		}
	}
	return ""
}
