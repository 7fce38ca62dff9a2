// Package store reads postal features out of Postgres as an alternative to
// the GeoJSON file source. Rows carry a code column and a GeoJSON geometry
// column.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/paulmach/orb/geojson"

	"postzone/logger"
	"postzone/postal"
)

// Open opens a Postgres connection for the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

// BuildDSNFromEnv assembles a Postgres DSN from the PG_* environment
// variables, matching the pipeline's deployment convention.
func BuildDSNFromEnv() string {
	host := os.Getenv("PG_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("PG_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("PG_USER")
	if user == "" {
		user = "postgres"
	}
	pass := os.Getenv("PG_PASSWORD")
	db := os.Getenv("PG_DB")
	if db == "" {
		db = "postzone"
	}
	ssl := os.Getenv("PG_SSLMODE")
	if ssl == "" {
		ssl = "disable"
	}
	dsn := "postgres://" + user
	if pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + host + ":" + port + "/" + db + "?sslmode=" + ssl
	return dsn
}

// ReadFeatures loads every postal row from the given table, normalizing
// codes and dropping rows without polygonal geometry, the same contract as
// the file loader. The table name cannot be a placeholder, so it is
// validated before interpolation.
func ReadFeatures(ctx context.Context, db *sql.DB, table string) ([]*geojson.Feature, error) {
	if !validTableName(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	rows, err := db.QueryContext(ctx, `SELECT code::text, geometry FROM `+table)
	if err != nil {
		return nil, fmt.Errorf("query postal table: %w", err)
	}
	defer rows.Close()

	var fs []*geojson.Feature
	badRows := 0
	for rows.Next() {
		var code string
		var raw []byte
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, fmt.Errorf("scan postal row: %w", err)
		}
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			badRows++
			continue
		}
		fs = append(fs, postal.NewZoneFeature(code, g.Geometry()))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read postal rows: %w", err)
	}

	kept, dropped := postal.Sanitize(fs)
	logger.L().Info("postal features loaded from postgres",
		"table", table, "kept", len(kept), "dropped", dropped+badRows)
	return kept, nil
}

// validTableName allows plain or schema-qualified identifiers.
func validTableName(table string) bool {
	if table == "" {
		return false
	}
	dots := 0
	for i, r := range table {
		switch {
		case r == '.':
			dots++
			if dots > 1 || i == 0 || i == len(table)-1 {
				return false
			}
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
