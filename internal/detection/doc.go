// Package detection defines the canonical thermal-anomaly reading and the
// normalizer that turns untrusted feed rows into validated, deterministically
// ordered Detections.
package detection
