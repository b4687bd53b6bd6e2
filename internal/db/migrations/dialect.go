// Package migrations holds the goose migrations for the bookmarks schema.
// They are written in Go so the DDL can differ per driver.
package migrations

// dialect picks the DDL variant. The db package sets it before goose.Up.
var dialect = "sqlite3"

// SetDialect selects the DDL variant used by Up migrations: "sqlite3",
// "postgres" or "mysql". Unknown values get the sqlite3 variant.
func SetDialect(d string) {
	dialect = d
}
