// Package pgdb is the query gateway between WanderWise application code and
// PostgreSQL, built on pgx v5.
//
// Invariants:
//
//   - the pool is constructed explicitly and injected; there is no
//     package-level singleton.
//   - Query, QueryRow and Exec forward SQL and arguments verbatim and return
//     driver errors unmodified.
//   - dedicated connections are only handed out through WithClient, which
//     returns them to the pool on every exit path.
//   - TLS is required only in production mode; certificate verification in
//     that mode is governed by Config.InsecureSkipVerify.
//   - construction-path errors are safe to log by default.
package pgdb
