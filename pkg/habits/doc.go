// Package habits tracks recurring habits and the days they were completed.
//
// All habits live in one document keyed by UUID and persisted through a
// storage.Manager. Completed days are kept sorted and free of duplicates.
package habits
