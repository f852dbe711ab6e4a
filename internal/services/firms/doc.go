// Package firms pulls raw thermal-anomaly records from the NASA FIRMS
// area CSV API. Responses are treated as untrusted input and handed to the
// detection normalizer as string records.
package firms
