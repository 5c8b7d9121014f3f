// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the wire and domain types shared by the client.

# Domain Types

Read-only records fetched from the backend:

  - Category: top-level topic grouping blocks
  - Block: named, ordered group of questions under a category
  - Question: code, text, single/multi-choice flag, selection cap
  - Option: select code, display text, validation and companion texts
  - Song: soundtrack catalog entry (mood, playlist tags, file URL)

Question and Option carry Validate methods; malformed records are
quarantined at the API boundary and rendered as per-item errors rather
than aborting sibling records.

# Request Types

Vote submission payloads:

  - SingleVoteRequest: question_code, option_select, user_uuid, other_text?
  - CheckboxVoteRequest: question_code, option_selects[], user_uuid, other_text?
  - OtherVoteRequest: question_code, other_text, user_uuid

# Response Types

Envelope types for list endpoints (categories, blocks, questions, options,
soundtracks, playlists), vote acks, and Results with per-option counts plus
the server's total_responses.

# Constants

OptionOther ("OTHER") is the reserved option sentinel meaning "free-text
response" rather than a fixed choice.
*/
package models
