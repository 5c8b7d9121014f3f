// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strconv"
	"strings"
)

// OptionOther is the reserved select code meaning "free-text response".
const OptionOther = "OTHER"

var (
	ErrMissingQuestionCode = errors.New("question record is missing question_code")
	ErrMissingQuestionText = errors.New("question record is missing question_text")
	ErrMissingSelectCode   = errors.New("option record is missing option_select")
	ErrMissingOptionText   = errors.New("option record is missing option_text")
)

// Domain types

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Block struct {
	BlockCode   string `json:"block_code"`
	CategoryID  int    `json:"category_id"`
	BlockNumber int    `json:"block_number"`
	Title       string `json:"title"`
}

// CategoryIDFromBlockCode extracts the category part of a block code of the
// form "<categoryID>_<blockNumber>". Returns 0 if the code is malformed.
func CategoryIDFromBlockCode(blockCode string) int {
	head, _, ok := strings.Cut(blockCode, "_")
	if !ok {
		return 0
	}
	id, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return id
}

type Question struct {
	QuestionCode string `json:"question_code"`
	QuestionText string `json:"question_text"`
	ColorCode    string `json:"color_code,omitempty"`
	CheckBox     bool   `json:"check_box"`
	MaxSelect    int    `json:"max_select,omitempty"`
}

// Validate reports whether the record carries the fields the client needs.
func (q Question) Validate() error {
	if q.QuestionCode == "" {
		return ErrMissingQuestionCode
	}
	if q.QuestionText == "" {
		return ErrMissingQuestionText
	}
	return nil
}

// Playlist extracts an embedded "[playlist:Name]" tag from the question
// text. Returns "" if the question carries no playlist tag.
func (q Question) Playlist() string {
	_, rest, ok := strings.Cut(q.QuestionText, "[playlist:")
	if !ok {
		return ""
	}
	name, _, ok := strings.Cut(rest, "]")
	if !ok {
		return ""
	}
	return name
}

type Option struct {
	QuestionCode    string `json:"question_code"`
	OptionSelect    string `json:"option_select"`
	OptionText      string `json:"option_text"`
	ResponseMessage string `json:"response_message"`
	CompanionAdvice string `json:"companion_advice"`
}

func (o Option) Validate() error {
	if o.OptionSelect == "" {
		return ErrMissingSelectCode
	}
	if o.OptionText == "" {
		return ErrMissingOptionText
	}
	return nil
}

// IsOther reports whether this option is the free-text sentinel.
func (o Option) IsOther() bool {
	return o.OptionSelect == OptionOther
}

type Song struct {
	SongID        string `json:"song_id"`
	SongTitle     string `json:"song_title"`
	MoodTag       string `json:"mood_tag"`
	PlaylistTag   string `json:"playlist_tag"`
	LyricsSnippet string `json:"lyrics_snippet"`
	Featured      bool   `json:"featured"`
	FeaturedOrder int    `json:"featured_order,omitempty"`
	FileURL       string `json:"file_url"`
}

// Playlists splits the comma-separated playlist tag into trimmed names.
func (s Song) Playlists() []string {
	var out []string
	for _, p := range strings.Split(s.PlaylistTag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Request types

type SingleVoteRequest struct {
	QuestionCode string `json:"question_code"`
	OptionSelect string `json:"option_select"`
	UserUUID     string `json:"user_uuid"`
	OtherText    string `json:"other_text,omitempty"`
}

type CheckboxVoteRequest struct {
	QuestionCode  string   `json:"question_code"`
	OptionSelects []string `json:"option_selects"`
	UserUUID      string   `json:"user_uuid"`
	OtherText     string   `json:"other_text,omitempty"`
}

type OtherVoteRequest struct {
	QuestionCode string `json:"question_code"`
	OtherText    string `json:"other_text"`
	UserUUID     string `json:"user_uuid"`
}

// Response types

type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type BlocksResponse struct {
	Blocks []Block `json:"blocks"`
}

type QuestionsResponse struct {
	Questions []Question `json:"questions"`
}

type OptionsResponse struct {
	Options []Option `json:"options"`
}

type SoundtracksResponse struct {
	Soundtracks []Song `json:"soundtracks"`
}

type PlaylistsResponse struct {
	Playlists []string `json:"playlists"`
}

type CreateUserResponse struct {
	Message  string `json:"message"`
	UserUUID string `json:"user_uuid"`
}

type VoteAck struct {
	Message string `json:"message"`
}

// ResultEntry is one server-aggregated count for an option select code.
// Checkbox responses are weighted, so votes can be fractional.
type ResultEntry struct {
	OptionSelect string  `json:"option_select"`
	Votes        float64 `json:"votes"`
}

type Results struct {
	QuestionCode   string        `json:"question_code"`
	Results        []ResultEntry `json:"results"`
	TotalResponses int           `json:"total_responses"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
