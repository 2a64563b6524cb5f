// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// DemoDestination is one row of demo data.
type DemoDestination struct {
	ID          string
	Name        string
	Country     string
	Description string
	Rating      float64
	Tags        []string
}

// DemoDestinations are inserted by SeedDemo.
var DemoDestinations = []DemoDestination{
	{"d1", "Bali", "Indonesia", "Temples, rice terraces and surf breaks.", 4.7, []string{"beach", "surf", "culture"}},
	{"d2", "Kyoto", "Japan", "Shrines, gardens and tea houses.", 4.8, []string{"culture", "food"}},
	{"d3", "Lisbon", "Portugal", "Hills, trams and pastel de nata.", 4.6, []string{"city", "food"}},
	{"d4", "Reykjavik", "Iceland", "Gateway to glaciers and northern lights.", 4.5, []string{"nature", "adventure"}},
	{"d5", "Cusco", "Peru", "Inca capital on the way to Machu Picchu.", 4.6, []string{"hiking", "history"}},
}

// DemoVouchers maps voucher codes to their value in minor units.
var DemoVouchers = map[string]int64{
	"WELCOME10": 1000,
	"SUMMER25":  2500,
}

// SeedDemo inserts demo destinations and vouchers. Existing rows are kept.
func SeedDemo(db *sql.DB) error {
	for _, d := range DemoDestinations {
		_, err := db.Exec(`
			INSERT INTO destination (id, name, country, description, rating, tags)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, d.ID, d.Name, d.Country, d.Description, d.Rating, strings.Join(d.Tags, ","))
		if err != nil {
			return fmt.Errorf("failed to seed destination %s: %w", d.ID, err)
		}
	}

	for code, amount := range DemoVouchers {
		_, err := db.Exec(`
			INSERT INTO voucher (code, amount_minor)
			VALUES ($1, $2)
			ON CONFLICT (code) DO NOTHING
		`, code, amount)
		if err != nil {
			return fmt.Errorf("failed to seed voucher %s: %w", code, err)
		}
	}

	return nil
}
