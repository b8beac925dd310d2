package db

import (
	"fmt"
)

// ListWhitelist returns the stored domains in order.
func (db *DB) ListWhitelist() ([]string, error) {
	rows, err := db.Query("SELECT domain FROM whitelist ORDER BY position, rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list whitelist: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// ReplaceWhitelist swaps the whole list in one transaction.
// Callers pass normalized, de-duplicated domains.
func (db *DB) ReplaceWhitelist(domains []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // No-op after Commit

	if _, err := tx.Exec("DELETE FROM whitelist"); err != nil {
		return fmt.Errorf("failed to clear whitelist: %w", err)
	}
	for i, d := range domains {
		if _, err := tx.Exec("INSERT INTO whitelist (position, domain) VALUES (?, ?)", i, d); err != nil {
			return fmt.Errorf("failed to insert domain %s: %w", d, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit whitelist: %w", err)
	}
	return nil
}

// AddDomain appends domain to the end of the list. It reports false if the
// domain was already present.
func (db *DB) AddDomain(domain string) (bool, error) {
	res, err := db.Exec(`
		INSERT OR IGNORE INTO whitelist (position, domain)
		SELECT COALESCE(MAX(position), -1) + 1, ? FROM whitelist
	`, domain)
	if err != nil {
		return false, fmt.Errorf("failed to add domain %s: %w", domain, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

// RemoveDomain deletes domain. It reports false if it was not present.
func (db *DB) RemoveDomain(domain string) (bool, error) {
	res, err := db.Exec("DELETE FROM whitelist WHERE domain = ?", domain)
	if err != nil {
		return false, fmt.Errorf("failed to remove domain %s: %w", domain, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

// WhitelistStored reports whether the user has ever saved a whitelist.
func (db *DB) WhitelistStored() (bool, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM whitelist").Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count whitelist: %w", err)
	}
	return n > 0, nil
}
