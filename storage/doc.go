// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storage persists client-side state in a local SQLite database.

The store is a flat key-value table, the client-side counterpart of a
browser's localStorage. It holds only plain strings and JSON-serializable
scalars:

  - user identifier and birth year
  - per-question-code cooldown timestamps
  - theme-song last-played date
  - per-category completed-block lists

Reads never fail on absence: a missing key means "never happened". Clear
wipes everything and backs the blunt error-recovery action.

	store, err := storage.Open("myworld.db")
	...
	v, ok, err := store.Get("user_uuid")
*/
package storage
