// Package remoteregistry serves model profiles from a remote source through a TTL cache.
//
// A Fetcher loads and parses one profile; HTTPFetcher is the stock implementation and resolves
// files with the same candidate order as the on-disk registry. Registry adds caching, shared
// in-flight fetches, and eviction on top of any Fetcher.
package remoteregistry
