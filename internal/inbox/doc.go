// Package inbox runs the periodic inbox check. The schedule fires every five
// minutes; each tick is compared against the expected interval and late ticks
// are logged. Actual inbox ingestion is not implemented yet, the checker only
// establishes the timer contract.
package inbox
