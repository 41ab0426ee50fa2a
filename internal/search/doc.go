// Package search loads the search engines of the current region.
//
// The browser store only records which region is selected. Middleware
// watches for SetRegion, loads the region's engines from a Provider in the
// background and dispatches SetSearchEngines when they arrive.
package search
