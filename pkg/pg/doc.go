// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// startup retries, goose schema migrations, a health check closure, and error
// classification helpers shared by the stores.
//
// Configuration comes from environment variables via the struct tags on
// Config. Migrations are applied with goose before the service starts
// serving, and are additive: columns and tables are added with defaults, old
// code keeps working against the new schema.
package pg
