package store

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
    name TEXT PRIMARY KEY,
    source TEXT,
    format TEXT,
    transactions INTEGER NOT NULL,
    items INTEGER NOT NULL,
    imported_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS basket_items (
    dataset TEXT NOT NULL,
    tid INTEGER NOT NULL,
    item TEXT NOT NULL,
    PRIMARY KEY (dataset, tid, item),
    FOREIGN KEY (dataset) REFERENCES datasets(name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_basket_items_item ON basket_items(dataset, item);
`
