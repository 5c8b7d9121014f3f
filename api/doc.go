// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package api is the stateless REST client for the MyWorld backend.

Every method takes a context.Context and maps one-to-one onto the wire
contract:

	GET  /api/categories                       → Categories
	GET  /api/categories/{id}/blocks           → Blocks
	GET  /api/blocks/{code}/questions          → Questions
	GET  /api/questions/{code}/options         → Options
	POST /api/users?user_uuid=&year_of_birth=  → CreateUser
	POST /api/vote/single                      → SubmitSingle
	POST /api/vote/checkbox                    → SubmitCheckbox
	POST /api/vote/other                       → SubmitOther
	GET  /api/results/{code}                   → Results
	GET  /api/soundtracks                      → Soundtracks
	GET  /api/soundtracks/playlists            → Playlists

Non-2xx answers surface as *StatusError. The client performs no retries;
failure handling is the voting layer's concern.
*/
package api
