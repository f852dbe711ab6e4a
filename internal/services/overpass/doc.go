// Package overpass looks up OpenStreetMap land-use context near a detection
// via the Overpass API. Results enrich verification prompts and are always
// optional.
package overpass
