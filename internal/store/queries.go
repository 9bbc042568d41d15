package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InsertDataset stores baskets under ds.Name, replacing any dataset of the
// same name. Transactions and Items are derived from baskets.
func (s *Store) InsertDataset(ds *Dataset, baskets [][]string) error {
	distinct := make(map[string]struct{})
	for _, b := range baskets {
		for _, item := range b {
			distinct[item] = struct{}{}
		}
	}
	ds.Transactions = len(baskets)
	ds.Items = len(distinct)
	if ds.ImportedAt.IsZero() {
		ds.ImportedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM datasets WHERE name = ?", ds.Name); err != nil {
		return wrapQueryError(fmt.Sprintf("failed to replace dataset %s", ds.Name), err)
	}

	_, err = tx.Exec(`
		INSERT INTO datasets (name, source, format, transactions, items, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		ds.Name,
		ds.Source,
		ds.Format,
		ds.Transactions,
		ds.Items,
		ds.ImportedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert dataset %s: %w", ds.Name, err)
	}

	stmt, err := tx.Prepare("INSERT INTO basket_items (dataset, tid, item) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare basket insert: %w", err)
	}
	defer stmt.Close()

	for tid, b := range baskets {
		for _, item := range b {
			if _, err := stmt.Exec(ds.Name, tid, item); err != nil {
				return fmt.Errorf("failed to insert item %q of transaction %d: %w", item, tid, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset %s: %w", ds.Name, err)
	}
	return nil
}

// GetDataset retrieves a dataset's metadata by name.
func (s *Store) GetDataset(name string) (*Dataset, error) {
	query := `
		SELECT name, source, format, transactions, items, imported_at
		FROM datasets
		WHERE name = ?
	`

	ds, err := scanDataset(s.db.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, wrapQueryError(fmt.Sprintf("failed to get dataset %s", name), err)
	}
	return ds, nil
}

// ListDatasets returns all datasets ordered by name.
func (s *Store) ListDatasets() ([]*Dataset, error) {
	query := `
		SELECT name, source, format, transactions, items, imported_at
		FROM datasets
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, wrapQueryError("failed to list datasets", err)
	}
	defer rows.Close()

	datasets := []*Dataset{}
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		datasets = append(datasets, ds)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datasets: %w", err)
	}
	return datasets, nil
}

// LoadBaskets returns the transactions of a dataset in import order.
// Transactions with no items are returned as empty baskets.
func (s *Store) LoadBaskets(name string) ([][]string, error) {
	ds, err := s.GetDataset(name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT tid, item
		FROM basket_items
		WHERE dataset = ?
		ORDER BY tid, item
	`, name)
	if err != nil {
		return nil, wrapQueryError(fmt.Sprintf("failed to load dataset %s", name), err)
	}
	defer rows.Close()

	baskets := make([][]string, ds.Transactions)
	for i := range baskets {
		baskets[i] = []string{}
	}
	for rows.Next() {
		var tid int
		var item string
		if err := rows.Scan(&tid, &item); err != nil {
			return nil, fmt.Errorf("failed to scan basket row: %w", err)
		}
		if tid < 0 || tid >= len(baskets) {
			return nil, fmt.Errorf("dataset %s: transaction %d out of range", name, tid)
		}
		baskets[tid] = append(baskets[tid], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating baskets: %w", err)
	}
	return baskets, nil
}

// ItemCounts returns how many transactions of a dataset contain each item,
// most frequent first.
func (s *Store) ItemCounts(name string) ([]ItemCount, error) {
	if _, err := s.GetDataset(name); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT item, COUNT(*) AS n
		FROM basket_items
		WHERE dataset = ?
		GROUP BY item
		ORDER BY n DESC, item
	`, name)
	if err != nil {
		return nil, wrapQueryError(fmt.Sprintf("failed to count items of %s", name), err)
	}
	defer rows.Close()

	counts := []ItemCount{}
	for rows.Next() {
		var c ItemCount
		if err := rows.Scan(&c.Item, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan item count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item counts: %w", err)
	}
	return counts, nil
}

// DeleteDataset removes a dataset and its transactions.
func (s *Store) DeleteDataset(name string) error {
	result, err := s.db.Exec("DELETE FROM datasets WHERE name = ?", name)
	if err != nil {
		return wrapQueryError(fmt.Sprintf("failed to delete dataset %s", name), err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete of %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*Dataset, error) {
	var ds Dataset
	var source, format sql.NullString
	var importedAt string

	err := row.Scan(
		&ds.Name,
		&source,
		&format,
		&ds.Transactions,
		&ds.Items,
		&importedAt,
	)
	if err != nil {
		return nil, err
	}
	ds.Source = source.String
	ds.Format = format.String

	ds.ImportedAt, err = time.Parse(time.RFC3339, importedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse imported_at for %s: %w", ds.Name, err)
	}
	return &ds, nil
}
