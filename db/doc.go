// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the local session database and creates its schema.

# Connecting

Open selects the driver from the database type, pings the server and
creates the schema:

	conn, err := db.Open(ctx, db.TypeSQLite, "/home/me/.stackit/session.db")
	if err != nil {
		log.Fatal(err)
	}

SQLite (modernc.org/sqlite, no cgo) is the default. PostgreSQL (lib/pq)
lets several machines share one login.

# Schema Creation

CreateSchema is safe to call multiple times - uses IF NOT EXISTS for all
tables and indexes.

# Tables

  - saved_session: Bearer token and resolved user per API base URL
  - unread_count: Last unread notification count seen per API base URL

# Relationships

	saved_session 1──1 unread_count

The foreign key uses ON DELETE CASCADE, so logging out clears the count.
*/
package db
