// Package timeline manages life timelines: named documents describing a
// life as a sequence of periods, each with its own events.
//
// One timeline is active at a time. Selecting another name swaps the
// underlying storage.Manager, creating the document from an embedded
// template when it does not exist yet. Periods are kept sorted by start
// month and events by start day.
package timeline
