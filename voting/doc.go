// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the per-question voting state machine.

# Phases

	Idle → Submitting → Revealed                      (single-choice click)
	Idle → AwaitingOtherText → Submitting → Revealed  (free-text response)
	Idle → [toggle selections] → Submitting → Revealed (multi-choice)
	Submitting → Error → Idle                         (failure, recoverable)

Revealed is terminal for an instance; a fresh mount creates a new Machine.

# Guarantees

  - At most one submission in flight per instance: while Submitting, all
    interactions are rejected with ErrSubmitInFlight.
  - The cooldown gate is re-checked immediately before the network call,
    not only at click time, closing the stale-UI race.
  - Submission and the results fetch are strictly sequential so the
    snapshot includes the user's own vote.
  - Validation failures (empty OTHER text, nothing selected) never reach
    the network.
  - Malformed option records are isolated per item; siblings still render.

On success the machine records the cooldown, aggregates fresh results,
concatenates the selected options' response messages and companion advice
(blanks filtered, blank-line separator), clears transient selection, and
fires the AnsweredFunc callback for cross-question milestone logic.
*/
package voting
