// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/danielhkuo/pollkit/models"
)

// Server is an in-memory poll API backing integration tests. It serves
// the canned fixtures below and tallies submitted votes so results
// reflect what the test actually sent.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	votes     map[string]map[string]float64 // question -> option -> weight
	responses map[string]int                // question -> response count
	users     map[string]int                // user_uuid -> year_of_birth
}

// NewServer starts a fake poll API and registers cleanup with t.
func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		votes:     make(map[string]map[string]float64),
		responses: make(map[string]int),
		users:     make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/categories/{categoryID}/blocks", s.handleBlocks)
	mux.HandleFunc("GET /api/blocks/{blockCode}/questions", s.handleQuestions)
	mux.HandleFunc("GET /api/questions/{questionCode}/options", s.handleOptions)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("POST /api/vote/single", s.handleVoteSingle)
	mux.HandleFunc("POST /api/vote/checkbox", s.handleVoteCheckbox)
	mux.HandleFunc("POST /api/vote/other", s.handleVoteOther)
	mux.HandleFunc("GET /api/results/{questionCode}", s.handleResults)
	mux.HandleFunc("GET /api/soundtracks", s.handleSoundtracks)
	mux.HandleFunc("GET /api/soundtracks/playlists", s.handlePlaylists)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Fixtures returns the canned catalog served by the fake API.
func Fixtures() ([]models.Category, []models.Block, []models.Question, map[string][]models.Option, []models.Song) {
	categories := []models.Category{
		{ID: 1, Name: "School Life"},
		{ID: 2, Name: "Friendships"},
	}
	blocks := []models.Block{
		{BlockCode: "1_1", CategoryID: 1, BlockNumber: 1, Title: "Morning Routines"},
		{BlockCode: "1_2", CategoryID: 1, BlockNumber: 2, Title: "After School"},
		{BlockCode: "2_1", CategoryID: 2, BlockNumber: 1, Title: "Best Friends"},
	}
	questions := []models.Question{
		{QuestionCode: "Q1", QuestionText: "How do you feel about mornings? [playlist:Morning]"},
		{QuestionCode: "Q2", QuestionText: "What do you do after school?", CheckBox: true, MaxSelect: 2},
	}
	options := map[string][]models.Option{
		"Q1": {
			{QuestionCode: "Q1", OptionSelect: "A", OptionText: "Love them", ResponseMessage: "Early bird!", CompanionAdvice: "Keep that energy."},
			{QuestionCode: "Q1", OptionSelect: "B", OptionText: "Hate them", ResponseMessage: "Night owl!", CompanionAdvice: "Rest matters."},
			{QuestionCode: "Q1", OptionSelect: "OTHER", OptionText: "Other"},
		},
		"Q2": {
			{QuestionCode: "Q2", OptionSelect: "A", OptionText: "Sports", ResponseMessage: "Stay active!"},
			{QuestionCode: "Q2", OptionSelect: "B", OptionText: "Gaming", ResponseMessage: "Have fun!"},
			{QuestionCode: "Q2", OptionSelect: "C", OptionText: "Homework", ResponseMessage: "Nice focus!"},
		},
	}
	songs := []models.Song{
		{SongID: "s1", SongTitle: "Sunrise", MoodTag: "inspiring", PlaylistTag: "Morning", Featured: true, FeaturedOrder: 1, FileURL: "https://cdn.example.com/s1.mp3"},
		{SongID: "s2", SongTitle: "Courtside", MoodTag: "hype", PlaylistTag: "Workout, Morning", FileURL: "https://cdn.example.com/s2.mp3"},
	}
	return categories, blocks, questions, options, songs
}

// VoteCount returns the tallied weight for one option of one question.
func (s *Server) VoteCount(questionCode, optionSelect string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votes[questionCode][optionSelect]
}

// UserYear returns the registered birth year for a user, or 0.
func (s *Server) UserYear(userUUID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userUUID]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	categories, _, _, _, _ := Fixtures()
	writeJSON(w, http.StatusOK, models.CategoriesResponse{Categories: categories})
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(r.PathValue("categoryID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid category id"})
		return
	}
	_, blocks, _, _, _ := Fixtures()
	var out []models.Block
	for _, b := range blocks {
		if b.CategoryID == categoryID {
			out = append(out, b)
		}
	}
	writeJSON(w, http.StatusOK, models.BlocksResponse{Blocks: out})
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	_, _, questions, _, _ := Fixtures()
	if r.PathValue("blockCode") == "404_1" {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "block not found"})
		return
	}
	writeJSON(w, http.StatusOK, models.QuestionsResponse{Questions: questions})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	_, _, _, options, _ := Fixtures()
	opts, ok := options[r.PathValue("questionCode")]
	if !ok {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "question not found"})
		return
	}
	writeJSON(w, http.StatusOK, models.OptionsResponse{Options: opts})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	userUUID := r.URL.Query().Get("user_uuid")
	yearStr := r.URL.Query().Get("year_of_birth")
	year, err := strconv.Atoi(yearStr)
	if userUUID == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "user_uuid and year_of_birth required"})
		return
	}

	s.mu.Lock()
	s.users[userUUID] = year
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.CreateUserResponse{Message: "user created", UserUUID: userUUID})
}

func (s *Server) recordVote(questionCode string, selects []string, weight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tally := s.votes[questionCode]
	if tally == nil {
		tally = make(map[string]float64)
		s.votes[questionCode] = tally
	}
	for _, sel := range selects {
		tally[sel] += weight
	}
	s.responses[questionCode]++
}

func (s *Server) handleVoteSingle(w http.ResponseWriter, r *http.Request) {
	var req models.SingleVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionCode == "" || req.OptionSelect == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid vote"})
		return
	}
	s.recordVote(req.QuestionCode, []string{req.OptionSelect}, 1)
	writeJSON(w, http.StatusOK, models.VoteAck{Message: "vote recorded"})
}

func (s *Server) handleVoteCheckbox(w http.ResponseWriter, r *http.Request) {
	var req models.CheckboxVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionCode == "" || len(req.OptionSelects) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid vote"})
		return
	}
	// Checkbox selections share one response: each pick carries 1/n.
	s.recordVote(req.QuestionCode, req.OptionSelects, 1/float64(len(req.OptionSelects)))
	writeJSON(w, http.StatusOK, models.VoteAck{Message: "vote recorded"})
}

func (s *Server) handleVoteOther(w http.ResponseWriter, r *http.Request) {
	var req models.OtherVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionCode == "" || req.OtherText == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid vote"})
		return
	}
	s.recordVote(req.QuestionCode, []string{models.OptionOther}, 1)
	writeJSON(w, http.StatusOK, models.VoteAck{Message: "vote recorded"})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	questionCode := r.PathValue("questionCode")

	s.mu.Lock()
	var entries []models.ResultEntry
	for sel, count := range s.votes[questionCode] {
		entries = append(entries, models.ResultEntry{OptionSelect: sel, Votes: count})
	}
	total := s.responses[questionCode]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.Results{
		QuestionCode:   questionCode,
		Results:        entries,
		TotalResponses: total,
	})
}

func (s *Server) handleSoundtracks(w http.ResponseWriter, _ *http.Request) {
	_, _, _, _, songs := Fixtures()
	writeJSON(w, http.StatusOK, models.SoundtracksResponse{Soundtracks: songs})
}

func (s *Server) handlePlaylists(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.PlaylistsResponse{Playlists: []string{"Morning", "Workout, Morning"}})
}
