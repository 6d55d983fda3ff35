// Package server hosts the Fiber HTTP service, its middleware chain, and the
// bundle registry that maps configured bundle names to resolved routes.
// Handlers are injected through BundleHandler so the asset pipeline and tests
// can plug in without this package depending on them.
package server
