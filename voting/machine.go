// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/pollkit/cooldown"
	"github.com/danielhkuo/pollkit/models"
	"github.com/danielhkuo/pollkit/results"
)

// Phase is the lifecycle state of a question instance.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseAwaitingOtherText Phase = "awaiting_other_text"
	PhaseSubmitting        Phase = "submitting"
	PhaseRevealed          Phase = "revealed"
	PhaseError             Phase = "error"
)

var (
	ErrNotLoaded       = errors.New("options have not been loaded")
	ErrNoOptions       = errors.New("no options available for this question")
	ErrOnCooldown      = errors.New("voting is on cooldown for this question")
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
	ErrAlreadyRevealed = errors.New("this question instance has already been answered")
	ErrEmptyOtherText  = errors.New("the OTHER option requires non-empty text")
	ErrNothingSelected = errors.New("no options are selected")
	ErrUnknownOption   = errors.New("unknown option select code")
	ErrNotMultiChoice  = errors.New("question is not multi-choice")
	ErrNotSingleChoice = errors.New("question is not single-choice")
	ErrNotAwaitingText = errors.New("no OTHER text is being awaited")
)

// Canned validation texts for free-text responses, which have no
// per-option response message.
const (
	otherResponseMessage = "Thank you for sharing your thoughts!"
	otherCompanionAdvice = "Your unique perspective adds valuable insight to this poll."
)

// Backend is the slice of the REST client the machine needs. api.Client
// satisfies it; tests substitute fakes.
type Backend interface {
	Options(ctx context.Context, questionCode string) ([]models.Option, error)
	SubmitSingle(ctx context.Context, req models.SingleVoteRequest) error
	SubmitCheckbox(ctx context.Context, req models.CheckboxVoteRequest) error
	SubmitOther(ctx context.Context, req models.OtherVoteRequest) error
	Results(ctx context.Context, questionCode string) (models.Results, error)
}

// AnsweredFunc is notified after a successful submission, once the results
// are revealed. The owning list aggregates milestone logic on top of it.
type AnsweredFunc func(questionCode string)

// OptionItem is one fetched option plus its per-record validation error.
// A malformed record is isolated here so its siblings still render.
type OptionItem struct {
	Option models.Option
	Err    error
}

// Machine is the per-question voting state machine. One instance renders
// one question; a Revealed machine is terminal and a fresh mount starts a
// new instance.
type Machine struct {
	question   models.Question
	backend    Backend
	gate       *cooldown.Gate
	userUUID   string
	onAnswered AnsweredFunc

	mu        sync.Mutex
	phase     Phase
	loaded    bool
	options   []OptionItem
	selected  []string
	otherText string

	snapshot          models.Results
	view              results.View
	validationMessage string
	companionAdvice   string
	err               error
}

// NewMachine creates an Idle machine for question. onAnswered may be nil.
func NewMachine(question models.Question, backend Backend, gate *cooldown.Gate, userUUID string, onAnswered AnsweredFunc) *Machine {
	return &Machine{
		question:   question,
		backend:    backend,
		gate:       gate,
		userUUID:   userUUID,
		onAnswered: onAnswered,
		phase:      PhaseIdle,
	}
}

// Load fetches the option list. Malformed records are kept with their
// validation error attached; a question with zero options returns
// ErrNoOptions so the caller renders a distinct error, not an empty
// interactive area.
func (m *Machine) Load(ctx context.Context) error {
	opts, err := m.backend.Options(ctx, m.question.QuestionCode)
	if err != nil {
		return fmt.Errorf("failed to fetch options: %w", err)
	}

	items := make([]OptionItem, 0, len(opts))
	for _, opt := range opts {
		item := OptionItem{Option: opt}
		if verr := opt.Validate(); verr != nil {
			slog.Warn("malformed option record",
				"question_code", m.question.QuestionCode,
				"option_select", opt.OptionSelect,
				"error", verr,
			)
			item.Err = verr
		}
		items = append(items, item)
	}

	m.mu.Lock()
	m.options = items
	m.loaded = true
	m.mu.Unlock()

	if len(items) == 0 {
		return ErrNoOptions
	}
	return nil
}

// SelectSingle handles a click on a single-choice option. A non-OTHER
// click submits immediately; clicking OTHER transitions to
// AwaitingOtherText (clearing any prior selection) without a network call.
func (m *Machine) SelectSingle(ctx context.Context, optionSelect string) error {
	if m.question.CheckBox {
		return ErrNotSingleChoice
	}

	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	item, ok := m.findOption(optionSelect)
	if !ok {
		m.mu.Unlock()
		return ErrUnknownOption
	}
	if item.Option.IsOther() {
		if err := m.guardInteractionLocked(); err != nil {
			m.mu.Unlock()
			return err
		}
		m.selected = nil
		m.phase = PhaseAwaitingOtherText
		m.mu.Unlock()
		return nil
	}
	if err := m.beginSubmitLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.selected = []string{optionSelect}
	m.mu.Unlock()

	return m.submit(ctx, func() error {
		return m.backend.SubmitSingle(ctx, models.SingleVoteRequest{
			QuestionCode: m.question.QuestionCode,
			OptionSelect: optionSelect,
			UserUUID:     m.userUUID,
		})
	}, []string{optionSelect}, false)
}

// SetOtherText records the free-text draft. Meaningful while awaiting
// OTHER text or while OTHER is checked on a multi-choice question.
func (m *Machine) SetOtherText(text string) {
	m.mu.Lock()
	m.otherText = text
	m.mu.Unlock()
}

// SubmitOtherText submits the free-text response drafted after an OTHER
// click on a single-choice question. Empty or whitespace-only text is
// rejected before any network call and the machine stays in
// AwaitingOtherText.
func (m *Machine) SubmitOtherText(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != PhaseAwaitingOtherText {
		m.mu.Unlock()
		return ErrNotAwaitingText
	}
	text := strings.TrimSpace(m.otherText)
	if text == "" {
		m.mu.Unlock()
		return ErrEmptyOtherText
	}
	if err := m.beginSubmitLocked(); err != nil {
		// beginSubmit resets the phase on cooldown; restore the draft state.
		if errors.Is(err, ErrOnCooldown) {
			m.phase = PhaseAwaitingOtherText
		}
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	return m.submit(ctx, func() error {
		return m.backend.SubmitOther(ctx, models.OtherVoteRequest{
			QuestionCode: m.question.QuestionCode,
			OtherText:    text,
			UserUUID:     m.userUUID,
		})
	}, nil, true)
}

// Toggle checks or unchecks a multi-choice option, constrained by the
// question's selection cap: attempts to add beyond the cap are silently
// ignored while already-selected options remain removable. Returns whether
// the option is selected after the call.
func (m *Machine) Toggle(optionSelect string) (bool, error) {
	if !m.question.CheckBox {
		return false, ErrNotMultiChoice
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return false, ErrNotLoaded
	}
	if _, ok := m.findOption(optionSelect); !ok {
		return false, ErrUnknownOption
	}
	if err := m.guardInteractionLocked(); err != nil {
		return m.isSelectedLocked(optionSelect), err
	}

	for i, code := range m.selected {
		if code == optionSelect {
			m.selected = append(m.selected[:i], m.selected[i+1:]...)
			return false, nil
		}
	}

	if m.question.MaxSelect > 0 && len(m.selected) >= m.question.MaxSelect {
		return false, nil
	}
	m.selected = append(m.selected, optionSelect)
	return true, nil
}

// SubmitChecked submits the current multi-choice selection. Selecting
// OTHER requires non-empty trimmed text; the rejection happens before any
// network call.
func (m *Machine) SubmitChecked(ctx context.Context) error {
	if !m.question.CheckBox {
		return ErrNotMultiChoice
	}

	m.mu.Lock()
	if len(m.selected) == 0 {
		m.mu.Unlock()
		return ErrNothingSelected
	}
	selected := append([]string(nil), m.selected...)

	otherText := ""
	hasOther := false
	for _, code := range selected {
		if code == models.OptionOther {
			hasOther = true
		}
	}
	if hasOther {
		otherText = strings.TrimSpace(m.otherText)
		if otherText == "" {
			m.mu.Unlock()
			return ErrEmptyOtherText
		}
	}

	if err := m.beginSubmitLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	return m.submit(ctx, func() error {
		return m.backend.SubmitCheckbox(ctx, models.CheckboxVoteRequest{
			QuestionCode:  m.question.QuestionCode,
			OptionSelects: selected,
			UserUUID:      m.userUUID,
			OtherText:     otherText,
		})
	}, selected, false)
}

// Recover clears a failed submission, returning the machine to Idle so
// the user may retry. The blunt storage-wiping recovery lives at the
// session level; this only resets the instance.
func (m *Machine) Recover() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseError {
		m.phase = PhaseIdle
		m.err = nil
	}
}

// guardInteractionLocked rejects interactions in terminal or busy phases.
func (m *Machine) guardInteractionLocked() error {
	switch m.phase {
	case PhaseSubmitting:
		return ErrSubmitInFlight
	case PhaseRevealed:
		return ErrAlreadyRevealed
	}
	if !m.loaded {
		return ErrNotLoaded
	}
	return nil
}

// beginSubmitLocked re-validates every guard at the moment of submission,
// not only at click time, then claims the single in-flight slot.
func (m *Machine) beginSubmitLocked() error {
	if err := m.guardInteractionLocked(); err != nil {
		return err
	}
	if m.gate.IsOnCooldown(m.question.QuestionCode) {
		m.phase = PhaseIdle
		return ErrOnCooldown
	}
	m.phase = PhaseSubmitting
	return nil
}

// submit runs the network half of a submission: the vote call, then the
// results fetch, strictly in that order so the snapshot includes the
// user's own contribution. Called with the Submitting slot already held.
func (m *Machine) submit(ctx context.Context, send func() error, selected []string, freeText bool) error {
	if err := send(); err != nil {
		m.fail(fmt.Errorf("vote submission failed: %w", err))
		return err
	}

	snapshot, err := m.backend.Results(ctx, m.question.QuestionCode)
	if err != nil {
		m.fail(fmt.Errorf("results fetch failed: %w", err))
		return err
	}

	if err := m.gate.Record(m.question.QuestionCode); err != nil {
		// The vote landed; losing the local cooldown record only weakens
		// the advisory gate. Log and continue to the reveal.
		slog.Error("failed to record cooldown", "question_code", m.question.QuestionCode, "error", err)
	}

	m.mu.Lock()
	m.snapshot = snapshot

	var opts []models.Option
	for _, item := range m.options {
		if item.Err == nil {
			opts = append(opts, item.Option)
		}
	}
	m.view = results.Aggregate(snapshot, opts)

	if freeText {
		m.validationMessage = otherResponseMessage
		m.companionAdvice = otherCompanionAdvice
	} else {
		m.validationMessage = m.joinTextsLocked(selected, func(o models.Option) string { return o.ResponseMessage })
		m.companionAdvice = m.joinTextsLocked(selected, func(o models.Option) string { return o.CompanionAdvice })
	}

	m.selected = nil
	m.otherText = ""
	m.phase = PhaseRevealed
	m.mu.Unlock()

	slog.Info("question answered", "question_code", m.question.QuestionCode)

	if m.onAnswered != nil {
		m.onAnswered(m.question.QuestionCode)
	}
	return nil
}

func (m *Machine) fail(err error) {
	slog.Error("voting error", "question_code", m.question.QuestionCode, "error", err)

	m.mu.Lock()
	m.phase = PhaseError
	m.err = err
	m.mu.Unlock()
}

// joinTextsLocked concatenates the chosen text field of every selected
// option, blanks filtered, joined by a blank line.
func (m *Machine) joinTextsLocked(selected []string, field func(models.Option) string) string {
	var parts []string
	for _, code := range selected {
		if item, ok := m.findOption(code); ok && item.Err == nil {
			if text := field(item.Option); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m *Machine) findOption(optionSelect string) (OptionItem, bool) {
	for _, item := range m.options {
		if item.Option.OptionSelect == optionSelect {
			return item, true
		}
	}
	return OptionItem{}, false
}

func (m *Machine) isSelectedLocked(optionSelect string) bool {
	for _, code := range m.selected {
		if code == optionSelect {
			return true
		}
	}
	return false
}

// Accessors

func (m *Machine) Question() models.Question { return m.question }

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Machine) Options() []OptionItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OptionItem(nil), m.options...)
}

func (m *Machine) Selected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.selected...)
}

func (m *Machine) OtherText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otherText
}

// View returns the aggregated results display. The second return is false
// until the machine reaches Revealed.
func (m *Machine) View() (results.View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view, m.phase == PhaseRevealed
}

func (m *Machine) ValidationMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validationMessage
}

func (m *Machine) CompanionAdvice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.companionAdvice
}

func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// CooldownRemaining is the gate state for the cooldown display, checked
// on mount and whenever a submit is rejected with ErrOnCooldown.
func (m *Machine) CooldownRemaining() time.Duration {
	return m.gate.Remaining(m.question.QuestionCode)
}
