// SPDX-License-Identifier: MIT

package events

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Load reads an events table from a msgpack file holding a list of Event.
func Load(path string) (*Events, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	var rows []Event
	if err := msgpack.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return &Events{rows: rows}, nil
}

// Save writes the table to path as msgpack.
func (e *Events) Save(path string) error {
	data, err := msgpack.Marshal(e.rows)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write events: %w", err)
	}

	return nil
}
