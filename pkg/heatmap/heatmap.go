// Package heatmap builds the tool-usage heatmap: it merges the tool
// catalog with sparse call counts and maps each count to a tile color.
//
// Unused tools still render (count 0, neutral gray); call counts not in
// the catalog are appended under the "other" category so nothing the
// backend reports is dropped.
package heatmap

import (
	"github.com/0xmhha/telemetry-monitor/pkg/snapshot"
)

// CategoryOther is assigned to observed tools missing from the catalog.
const CategoryOther = "other"

// Tool is one catalog entry.
type Tool struct {
	// Name is the tool identifier and the merge key.
	Name string

	// Category groups tools in the rendered heatmap.
	Category string
}

// Tile is one rendered heatmap cell.
type Tile struct {
	// Name is the tool name.
	Name string

	// Category is the catalog category, or CategoryOther for
	// uncatalogued tools.
	Category string

	// Calls is the clamped-at-zero call count.
	Calls int

	// Color is the tile background as a #rrggbb hex string.
	Color string

	// TextColor is the contrasting label color as a #rrggbb hex string.
	TextColor string
}

// Merge combines the tool catalog with observed call counts into the
// ordered tile list.
//
// Catalog order is preserved first, so unused tools are visible with
// zero calls; stats for tools outside the catalog are appended
// afterward in stats order under CategoryOther. Deduplication is by
// exact name, first occurrence wins.
func Merge(catalog []Tool, stats []snapshot.ToolStat) []Tile {
	calls := make(map[string]int, len(stats))
	for _, st := range stats {
		if _, seen := calls[st.Tool]; seen {
			continue
		}
		calls[st.Tool] = st.Calls
	}

	tiles := make([]Tile, 0, len(catalog)+len(stats))
	seen := make(map[string]bool, len(catalog)+len(stats))

	for _, tool := range catalog {
		if tool.Name == "" || seen[tool.Name] {
			continue
		}
		seen[tool.Name] = true
		tiles = append(tiles, newTile(tool.Name, tool.Category, calls[tool.Name]))
	}

	for _, st := range stats {
		if st.Tool == "" || seen[st.Tool] {
			continue
		}
		seen[st.Tool] = true
		tiles = append(tiles, newTile(st.Tool, CategoryOther, st.Calls))
	}

	return tiles
}

// newTile builds one tile with its colors resolved.
func newTile(name, category string, calls int) Tile {
	if calls < 0 {
		calls = 0
	}

	color, text := MapColor(calls)

	return Tile{
		Name:      name,
		Category:  category,
		Calls:     calls,
		Color:     color,
		TextColor: text,
	}
}
