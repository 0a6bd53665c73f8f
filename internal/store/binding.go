package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Binding overrides the action a gesture triggers.
type Binding struct {
	Gesture    string
	Action     string
	PluginName string // empty means any plugin that declares Action
	Config     json.RawMessage
	Enabled    bool
	UpdatedAt  time.Time
}

// BindingRepository provides CRUD operations for action bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

// Upsert inserts or replaces the binding for b.Gesture.
func (r *BindingRepository) Upsert(b *Binding) error {
	b.UpdatedAt = time.Now()

	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO action_bindings (gesture, action, plugin_name, config, enabled, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(gesture) DO UPDATE SET
			action = excluded.action,
			plugin_name = excluded.plugin_name,
			config = excluded.config,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`,
		b.Gesture, b.Action, b.PluginName, string(config), b.Enabled, b.UpdatedAt,
	)
	return err
}

// Get retrieves the binding for a gesture.
func (r *BindingRepository) Get(gesture string) (*Binding, error) {
	b := &Binding{}
	var config string
	var enabled int

	err := r.db.QueryRow(
		`SELECT gesture, action, plugin_name, config, enabled, updated_at
		 FROM action_bindings WHERE gesture = ?`,
		gesture,
	).Scan(&b.Gesture, &b.Action, &b.PluginName, &config, &enabled, &b.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

// List retrieves all bindings ordered by gesture.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(
		`SELECT gesture, action, plugin_name, config, enabled, updated_at
		 FROM action_bindings ORDER BY gesture`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b := &Binding{}
		var config string
		var enabled int

		if err := rows.Scan(&b.Gesture, &b.Action, &b.PluginName, &config, &enabled, &b.UpdatedAt); err != nil {
			return nil, err
		}

		b.Config = json.RawMessage(config)
		b.Enabled = enabled != 0
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Delete removes the binding for a gesture.
func (r *BindingRepository) Delete(gesture string) error {
	result, err := r.db.Exec(`DELETE FROM action_bindings WHERE gesture = ?`, gesture)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
