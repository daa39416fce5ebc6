// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Subsolar anchor, WebP/PNG export, headless mode, Prometheus metrics
// 0.2.0 - Generation-tokened recompute mailbox, undo/clear, hover readout
// 0.1.0 - Initial release: half-block world map, two-anchor great-circle rotation
