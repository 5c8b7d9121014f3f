// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"log/slog"
	"math"

	"github.com/danielhkuo/pollkit/models"
)

// Row is one option's share of the vote, ready for display.
type Row struct {
	OptionSelect string
	DisplayText  string
	Count        float64
	Percentage   int
}

// View is the rendered form of a results snapshot. Empty is true when
// there is nothing meaningful to chart ("no votes yet"), which callers
// must render instead of a zero-filled chart.
type View struct {
	Rows       []Row
	TotalVotes int
	Empty      bool
}

// Aggregate turns raw server counts into display percentages.
//
// Entries with negative counts are dropped (logged, never fatal). The
// percentage denominator is the sum of valid counts, falling back to the
// server's total_responses when the sum is zero. Each option's share is
// rounded half-up independently, so the column may sum to 99 or 101;
// that is accepted output, not renormalized. Row order preserves the
// server's entry order.
//
// options supplies display text per select code; unknown codes fall back
// to the code itself.
func Aggregate(snapshot models.Results, options []models.Option) View {
	texts := make(map[string]string, len(options))
	for _, opt := range options {
		texts[opt.OptionSelect] = opt.OptionText
	}

	var sum float64
	valid := make([]models.ResultEntry, 0, len(snapshot.Results))
	for _, entry := range snapshot.Results {
		if entry.OptionSelect == "" || entry.Votes < 0 || math.IsNaN(entry.Votes) {
			slog.Warn("dropping invalid result entry",
				"question_code", snapshot.QuestionCode,
				"option_select", entry.OptionSelect,
				"votes", entry.Votes,
			)
			continue
		}
		valid = append(valid, entry)
		sum += entry.Votes
	}

	denominator := sum
	if denominator == 0 {
		denominator = float64(snapshot.TotalResponses)
	}

	if len(valid) == 0 || denominator <= 0 {
		return View{Empty: true}
	}

	rows := make([]Row, 0, len(valid))
	for _, entry := range valid {
		text, ok := texts[entry.OptionSelect]
		if !ok {
			text = entry.OptionSelect
		}
		rows = append(rows, Row{
			OptionSelect: entry.OptionSelect,
			DisplayText:  text,
			Count:        entry.Votes,
			Percentage:   roundHalfUp(100 * entry.Votes / denominator),
		})
	}

	total := sum
	if total == 0 {
		total = float64(snapshot.TotalResponses)
	}

	return View{
		Rows:       rows,
		TotalVotes: roundHalfUp(total),
	}
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
