package store

import "time"

// Dataset describes an imported set of transactions.
type Dataset struct {
	Name         string
	Source       string // file the data was imported from
	Format       string // "matrix", "basket" or "json"
	Transactions int
	Items        int // distinct items
	ImportedAt   time.Time
}

// ItemCount is the number of transactions containing an item.
type ItemCount struct {
	Item  string
	Count int
}
