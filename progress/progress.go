// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package progress

import (
	"fmt"
	"strings"
	"sync"

	"github.com/danielhkuo/pollkit/models"
	"github.com/danielhkuo/pollkit/storage"
)

const completedBlocksPrefix = "completed_blocks_"

// milestoneAnswers is the number of answered questions in a block that
// earns a song suggestion. Blocks shorter than this reach the milestone
// when every question is answered.
const milestoneAnswers = 3

// Tracker persists which blocks a user has finished, one list per
// category.
type Tracker struct {
	store *storage.Store
}

func NewTracker(store *storage.Store) *Tracker {
	return &Tracker{store: store}
}

func categoryKey(categoryID int) string {
	return fmt.Sprintf("%s%d", completedBlocksPrefix, categoryID)
}

// Completed returns the block codes finished within a category.
func (t *Tracker) Completed(categoryID int) ([]string, error) {
	blocks, err := t.store.GetStringSlice(categoryKey(categoryID))
	if err != nil {
		return nil, fmt.Errorf("load completed blocks: %w", err)
	}
	return blocks, nil
}

// IsCompleted reports whether a block has been finished. The category is
// derived from the block code.
func (t *Tracker) IsCompleted(blockCode string) (bool, error) {
	blocks, err := t.Completed(models.CategoryIDFromBlockCode(blockCode))
	if err != nil {
		return false, err
	}
	for _, code := range blocks {
		if code == blockCode {
			return true, nil
		}
	}
	return false, nil
}

// MarkCompleted records a finished block. Idempotent.
func (t *Tracker) MarkCompleted(blockCode string) error {
	categoryID := models.CategoryIDFromBlockCode(blockCode)
	blocks, err := t.Completed(categoryID)
	if err != nil {
		return err
	}
	for _, code := range blocks {
		if code == blockCode {
			return nil
		}
	}
	blocks = append(blocks, blockCode)
	if err := t.store.SetStringSlice(categoryKey(categoryID), blocks); err != nil {
		return fmt.Errorf("save completed blocks: %w", err)
	}
	return nil
}

// Milestone counts answered questions within one block and fires once
// when the suggestion threshold is reached. It is session-scoped and
// never persisted.
type Milestone struct {
	mu        sync.Mutex
	threshold int
	answered  int
	fired     bool
}

// NewMilestone sizes the threshold for a block of questionCount
// questions.
func NewMilestone(questionCount int) *Milestone {
	threshold := milestoneAnswers
	if questionCount < threshold {
		threshold = questionCount
	}
	return &Milestone{threshold: threshold}
}

// RecordAnswer counts one answered question and reports true exactly
// once, when the threshold is first reached.
func (m *Milestone) RecordAnswer() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered++
	if m.fired || m.threshold <= 0 || m.answered < m.threshold {
		return false
	}
	m.fired = true
	return true
}

// Answered returns the count of answered questions so far.
func (m *Milestone) Answered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answered
}

// Recommend picks the song to suggest at a milestone: a mood match
// first, then the first featured song, then the first song at all.
// Reports false when the catalog is empty.
func Recommend(songs []models.Song) (models.Song, bool) {
	if len(songs) == 0 {
		return models.Song{}, false
	}
	for _, song := range songs {
		if matchesMilestoneMood(song.MoodTag) {
			return song, true
		}
	}
	for _, song := range songs {
		if song.Featured {
			return song, true
		}
	}
	return songs[0], true
}

func matchesMilestoneMood(mood string) bool {
	mood = strings.ToLower(mood)
	return strings.Contains(mood, "believing") || strings.Contains(mood, "inspiring")
}
