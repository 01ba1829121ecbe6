// Package todos keeps a weekly todo list: one ordered bucket per weekday.
//
// Positions inside a bucket are 1-based. Creating appends to the end,
// deleting or moving a todo renumbers the bucket it left.
package todos
