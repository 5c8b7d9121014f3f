package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/pollkit/api"
	"github.com/danielhkuo/pollkit/audio"
	"github.com/danielhkuo/pollkit/cliparse"
	"github.com/danielhkuo/pollkit/cooldown"
	"github.com/danielhkuo/pollkit/identity"
	"github.com/danielhkuo/pollkit/models"
	"github.com/danielhkuo/pollkit/progress"
	"github.com/danielhkuo/pollkit/results"
	"github.com/danielhkuo/pollkit/storage"
	"github.com/danielhkuo/pollkit/voting"
)

func main() {
	// .env is optional; flags and real env still win
	_ = godotenv.Load()

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.StatePath)
	if err != nil {
		slog.Error("state database open failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := api.New(cfg.APIBase, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := bufio.NewReader(os.Stdin)

	ident, err := bootstrapIdentity(ctx, in, store, client)
	if err != nil {
		slog.Error("onboarding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("identity ready", "user_uuid", ident.UserUUID)

	session := audio.NewSession(audio.NewNopPlayer(), audio.NewNopPlayer(), store, cfg.ThemeSongURL)
	songs := loadSoundtracks(ctx, client, cfg.PlaylistFile)

	app := &walkthrough{
		in:      in,
		client:  client,
		store:   store,
		gate:    cooldown.NewGate(store),
		tracker: progress.NewTracker(store),
		session: session,
		ident:   ident,
		songs:   songs,
	}
	if err := app.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("walkthrough ended", "error", err)
		os.Exit(1)
	}
}

// bootstrapIdentity loads the stored identity, or runs onboarding: ask
// for a birth year, apply the age gate, then register with the server.
func bootstrapIdentity(ctx context.Context, in *bufio.Reader, store *storage.Store, client *api.Client) (identity.Identity, error) {
	mgr := identity.NewManager(store)
	if ident, ok, err := mgr.Load(); err != nil {
		return identity.Identity{}, err
	} else if ok {
		return ident, nil
	}

	for {
		fmt.Print("What year were you born? ")
		line, err := in.ReadString('\n')
		if err != nil {
			return identity.Identity{}, err
		}
		year, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Println("Please enter a year, like 2009.")
			continue
		}

		switch err := identity.ValidateBirthYear(year); {
		case errors.Is(err, identity.ErrTooOld):
			fmt.Println("Sorry, this app is for teens only.")
			continue
		case errors.Is(err, identity.ErrTooYoung):
			fmt.Println("Sorry, you're not quite old enough yet.")
			continue
		case err != nil:
			return identity.Identity{}, err
		}

		ident, err := mgr.Create(year)
		if err != nil {
			return identity.Identity{}, err
		}
		if err := client.CreateUser(ctx, ident.UserUUID, ident.BirthYear); err != nil {
			return identity.Identity{}, fmt.Errorf("register user: %w", err)
		}
		return ident, nil
	}
}

// loadSoundtracks prefers the live catalog and falls back to the local
// manifest when the API is unreachable.
func loadSoundtracks(ctx context.Context, client *api.Client, manifestPath string) []models.Song {
	songs, err := client.Soundtracks(ctx)
	if err == nil {
		return songs
	}
	slog.Warn("soundtrack catalog unavailable", "error", err)

	if manifestPath == "" {
		return nil
	}
	songs, err = audio.LoadManifest(manifestPath)
	if err != nil {
		slog.Warn("playlist manifest unavailable", "error", err)
		return nil
	}
	return songs
}

type walkthrough struct {
	in      *bufio.Reader
	client  *api.Client
	store   *storage.Store
	gate    *cooldown.Gate
	tracker *progress.Tracker
	session *audio.Session
	ident   identity.Identity
	songs   []models.Song
}

func (w *walkthrough) run(ctx context.Context) error {
	for {
		categories, err := w.client.Categories(ctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}

		fmt.Println("\nCategories:")
		for i, c := range categories {
			fmt.Printf("  %d. %s\n", i+1, c.Name)
		}
		choice, ok, err := w.pick(ctx, "Pick a category (q to quit): ", len(categories))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := w.browseCategory(ctx, categories[choice]); err != nil {
			return err
		}
	}
}

func (w *walkthrough) browseCategory(ctx context.Context, category models.Category) error {
	blocks, err := w.client.Blocks(ctx, category.ID)
	if err != nil {
		return fmt.Errorf("load blocks: %w", err)
	}

	fmt.Printf("\n%s:\n", category.Name)
	for i, b := range blocks {
		mark := " "
		if done, err := w.tracker.IsCompleted(b.BlockCode); err == nil && done {
			mark = "✓"
		}
		fmt.Printf("  %d. [%s] %s\n", i+1, mark, b.Title)
	}
	choice, ok, err := w.pick(ctx, "Pick a block (q to go back): ", len(blocks))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return w.runBlock(ctx, blocks[choice])
}

func (w *walkthrough) runBlock(ctx context.Context, block models.Block) error {
	questions, err := w.client.Questions(ctx, block.BlockCode)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	milestone := progress.NewMilestone(len(questions))
	onAnswered := func(string) {
		if !milestone.RecordAnswer() {
			return
		}
		song, ok := progress.Recommend(w.songs)
		if !ok {
			return
		}
		fmt.Printf("\n🎵 You're on a roll! Here's a song for you: %s\n", song.SongTitle)
		if song.LyricsSnippet != "" {
			fmt.Printf("   %q\n", song.LyricsSnippet)
		}
		w.session.Soundtrack.Play(song, w.songs)
	}

	for _, question := range questions {
		if err := w.runQuestion(ctx, question, onAnswered); err != nil {
			return err
		}
	}

	if err := w.tracker.MarkCompleted(block.BlockCode); err != nil {
		slog.Warn("could not record finished block", "block_code", block.BlockCode, "error", err)
	}
	fmt.Printf("\nBlock %q finished!\n", block.Title)
	return nil
}

func (w *walkthrough) runQuestion(ctx context.Context, question models.Question, onAnswered voting.AnsweredFunc) error {
	machine := voting.NewMachine(question, w.client, w.gate, w.ident.UserUUID, onAnswered)
	if err := machine.Load(ctx); err != nil {
		slog.Warn("question skipped", "question_code", question.QuestionCode, "error", err)
		return nil
	}

	fmt.Printf("\n%s\n", question.QuestionText)
	if playlist := question.Playlist(); playlist != "" {
		if matches := audio.ByPlaylist(w.songs, playlist); len(matches) > 0 {
			fmt.Printf("(This question has a %q playlist, first up: %s)\n", playlist, matches[0].SongTitle)
		}
	}

	if remaining := machine.CooldownRemaining(); remaining > 0 {
		fmt.Printf("You already answered this one. Ask me again in %s.\n", remaining.Round(time.Second))
		w.showResults(ctx, question)
		return nil
	}

	options := machine.Options()
	for i, item := range options {
		if item.Err != nil {
			continue
		}
		fmt.Printf("  %d. %s\n", i+1, item.Option.OptionText)
	}

	if question.CheckBox {
		return w.answerCheckbox(ctx, machine, options)
	}
	return w.answerSingle(ctx, machine, options)
}

func (w *walkthrough) answerSingle(ctx context.Context, machine *voting.Machine, options []voting.OptionItem) error {
	choice, ok, err := w.pick(ctx, "Your answer (q to skip): ", len(options))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	w.session.Theme.TriggerIfArmed()

	item := options[choice]
	if item.Err != nil {
		fmt.Println("That option can't be used right now.")
		return nil
	}

	if err := machine.SelectSingle(ctx, item.Option.OptionSelect); err != nil {
		return w.reportSubmitError(machine, err)
	}

	if machine.Phase() == voting.PhaseAwaitingOtherText {
		fmt.Print("Tell us more: ")
		line, err := w.in.ReadString('\n')
		if err != nil {
			return err
		}
		machine.SetOtherText(strings.TrimSpace(line))
		if err := machine.SubmitOtherText(ctx); err != nil {
			return w.reportSubmitError(machine, err)
		}
	}

	w.showReveal(machine)
	return nil
}

func (w *walkthrough) answerCheckbox(ctx context.Context, machine *voting.Machine, options []voting.OptionItem) error {
	fmt.Print("Pick any that apply, comma-separated (q to skip): ")
	line, err := w.in.ReadString('\n')
	if err != nil {
		return err
	}
	line = strings.TrimSpace(line)
	if line == "" || line == "q" {
		return nil
	}
	w.session.Theme.TriggerIfArmed()

	for _, field := range strings.Split(line, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 1 || n > len(options) {
			continue
		}
		item := options[n-1]
		if item.Err != nil {
			continue
		}
		if _, err := machine.Toggle(item.Option.OptionSelect); err != nil {
			return w.reportSubmitError(machine, err)
		}
	}

	for _, sel := range machine.Selected() {
		if sel != models.OptionOther {
			continue
		}
		fmt.Print("Tell us more: ")
		text, err := w.in.ReadString('\n')
		if err != nil {
			return err
		}
		machine.SetOtherText(strings.TrimSpace(text))
		break
	}

	if err := machine.SubmitChecked(ctx); err != nil {
		return w.reportSubmitError(machine, err)
	}
	w.showReveal(machine)
	return nil
}

// pick reads a 1-based menu choice and returns its zero-based index.
// "q" (or EOF) declines without an error.
func (w *walkthrough) pick(ctx context.Context, prompt string, n int) (int, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		fmt.Print(prompt)
		line, err := w.in.ReadString('\n')
		if err != nil {
			return 0, false, nil
		}
		line = strings.TrimSpace(line)
		if line == "q" {
			return 0, false, nil
		}
		choice, err := strconv.Atoi(line)
		if err != nil || choice < 1 || choice > n {
			fmt.Printf("Please enter a number between 1 and %d.\n", n)
			continue
		}
		return choice - 1, true, nil
	}
}

func (w *walkthrough) reportSubmitError(machine *voting.Machine, err error) error {
	switch {
	case errors.Is(err, voting.ErrOnCooldown):
		fmt.Printf("You already answered this one. Come back in %s.\n", machine.CooldownRemaining().Round(time.Second))
		return nil
	case errors.Is(err, voting.ErrNothingSelected), errors.Is(err, voting.ErrEmptyOtherText):
		fmt.Println("Nothing to submit, skipping.")
		return nil
	case errors.Is(err, context.Canceled):
		return err
	}

	slog.Warn("submission failed", "question_code", machine.Question().QuestionCode, "error", err)
	fmt.Println("Something went wrong.")
	fmt.Print("Press r to reset local data and start fresh, or Enter to keep going: ")
	if line, err := w.in.ReadString('\n'); err == nil && strings.TrimSpace(line) == "r" {
		w.resetLocalState()
	}
	machine.Recover()
	return nil
}

// resetLocalState is the blunt recovery action: wipe everything local
// (identity, cooldowns, progress, theme guard) so the next pass starts
// from a clean slate.
func (w *walkthrough) resetLocalState() {
	if err := w.store.Clear(); err != nil {
		slog.Error("local state reset failed", "error", err)
		fmt.Println("Couldn't clear local data, continuing anyway.")
		return
	}
	fmt.Println("Local data cleared.")
}

func (w *walkthrough) showReveal(machine *voting.Machine) {
	if machine.Phase() != voting.PhaseRevealed {
		return
	}
	if msg := machine.ValidationMessage(); msg != "" {
		fmt.Printf("\n%s\n", msg)
	}
	if advice := machine.CompanionAdvice(); advice != "" {
		fmt.Printf("\n%s\n", advice)
	}
	if view, ok := machine.View(); ok {
		printView(view)
	}
}

func (w *walkthrough) showResults(ctx context.Context, question models.Question) {
	snapshot, err := w.client.Results(ctx, question.QuestionCode)
	if err != nil {
		slog.Warn("results unavailable", "question_code", question.QuestionCode, "error", err)
		return
	}
	options, err := w.client.Options(ctx, question.QuestionCode)
	if err != nil {
		options = nil
	}
	printView(results.Aggregate(snapshot, options))
}

func printView(view results.View) {
	if view.Empty {
		fmt.Println("No responses yet. You're the first!")
		return
	}
	fmt.Println("\nHere's what everyone said:")
	for _, row := range view.Rows {
		fmt.Printf("  %3d%%  %s\n", row.Percentage, row.DisplayText)
	}
	fmt.Printf("  (%d votes)\n", view.TotalVotes)
}
