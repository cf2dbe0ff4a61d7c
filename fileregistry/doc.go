// Package fileregistry provides a filesystem-based model profile registry that loads
// YAML profiles on demand (lazy) and caches them. Use New to create a Registry;
// GetProfile resolves name+env to {dir}/{name}.{env}.yaml or .yml
// with fallback to {dir}/{name}.yaml or .yml.
package fileregistry
