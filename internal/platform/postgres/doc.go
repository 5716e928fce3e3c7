// Package postgres implements the store interfaces on PostgreSQL using
// database/sql with the pgx driver. Backend errors are mapped onto the
// store package's error vocabulary via MapError.
package postgres
