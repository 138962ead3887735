// Package sqlstore reads sites, pages, files and lists from the three
// relational backing stores.
//
// Each logical store (pages, files, lists) gets its own fixed-size pool,
// opened through sqlx with either github.com/lib/pq (PostgreSQL) or
// modernc.org/sqlite. Queries are written with ? placeholders and rebound
// for the pool's driver, so the same SQL runs against both.
//
// Every query acquires a dedicated connection and releases it on every exit
// path; cursors hold their connection until closed. The adapter never
// writes.
package sqlstore
