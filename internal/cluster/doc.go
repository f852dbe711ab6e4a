// Package cluster merges detections that represent the same physical fire
// observed across overlapping sensor passes or adjacent pixels, and derives
// each fire's stable event identity.
package cluster
