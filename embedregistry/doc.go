// Package embedregistry provides an embed.FS-based model profile registry that loads
// all YAML profiles at construction (eager). Use New with an fs.FS and root path;
// GetProfile performs an O(1) lookup by name and environment.
// Profile name must not contain ':' (used as cache key separator).
package embedregistry
