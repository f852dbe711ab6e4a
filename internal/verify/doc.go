// Package verify performs semantic verification of clustered fire events.
// A deterministic feature bundle is scored by a model-backed classifier and
// coerced into a closed verdict set of farm, industrial, or ambiguous.
package verify
