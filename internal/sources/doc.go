// Package sources provides the source registry: the partition of known package
// source URLs into active (reachable) and inactive (unreachable) sets.
//
// The Registry keeps both sets disjoint at all times. It is created either from
// two URL collections with New, which never probes, or from a persisted Document
// with FromDocument. It changes only through Add, Remove, Merge and Verify.
//
// Verify recomputes the whole partition. Probes may run concurrently; each
// result is stored in a slot keyed by the URL's position, and the new sets are
// assigned in one step once every probe has returned, so neither the order in
// which probes complete nor a partially finished run is ever observable.
//
// Reconciling the registry against the package manager lives in package sync.
package sources
