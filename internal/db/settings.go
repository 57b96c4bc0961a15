package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetSetting returns the stored value for key, or def when the key was never written.
func (d *DB) GetSetting(key, def string) (string, error) {
	value := def
	err := d.withTx(func(tx *sql.Tx) error {
		var v sql.NullString
		err := tx.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading setting %q: %w", key, err)
		}
		value = v.String
		return nil
	})
	if err != nil {
		return def, err
	}
	return value, nil
}

// SetSetting inserts or overwrites key. Last write wins.
func (d *DB) SetSetting(key, value string) error {
	return d.withTx(func(tx *sql.Tx) error {
		return setSetting(tx, key, value)
	})
}

func setSetting(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

// AllSettings returns every setting ordered by key
func (d *DB) AllSettings() ([]Setting, error) {
	var settings []Setting
	err := d.withTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT key, value FROM settings ORDER BY key`)
		if err != nil {
			return fmt.Errorf("listing settings: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				s Setting
				v sql.NullString
			)
			if err := rows.Scan(&s.Key, &v); err != nil {
				return err
			}
			s.Value = v.String
			settings = append(settings, s)
		}
		return rows.Err()
	})
	return settings, err
}
