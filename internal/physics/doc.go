// Package physics converts fire radiative power into emission estimates
// using pinned, versioned coefficients so every historical record stays
// reproducible.
package physics
