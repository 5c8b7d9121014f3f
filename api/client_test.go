package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/pollkit/models"
)

func TestCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/categories" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.CategoriesResponse{
			Categories: []models.Category{{ID: 1, Name: "Friendship"}, {ID: 2, Name: "School"}},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	cats, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Friendship" {
		t.Errorf("Unexpected categories: %+v", cats)
	}
}

func TestSubmitSingleSendsContract(t *testing.T) {
	var got models.SingleVoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/vote/single" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		json.NewEncoder(w).Encode(models.VoteAck{Message: "Vote recorded"})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	err := client.SubmitSingle(context.Background(), models.SingleVoteRequest{
		QuestionCode: "1_1_1",
		OptionSelect: "A",
		UserUUID:     "uuid-1",
	})
	if err != nil {
		t.Fatalf("SubmitSingle failed: %v", err)
	}

	if got.QuestionCode != "1_1_1" || got.OptionSelect != "A" || got.UserUUID != "uuid-1" {
		t.Errorf("Server received %+v", got)
	}
}

func TestCreateUserQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("user_uuid") != "uuid-9" || q.Get("year_of_birth") != "2009" {
			t.Errorf("Unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(models.CreateUserResponse{Message: "ok", UserUUID: "uuid-9"})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	if err := client.CreateUser(context.Background(), "uuid-9", 2009); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
}

func TestResultsFillsQuestionCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results":         []map[string]interface{}{{"option_select": "A", "votes": 30}},
			"total_responses": 40,
		})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	res, err := client.Results(context.Background(), "1_1_1")
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if res.QuestionCode != "1_1_1" {
		t.Errorf("Expected question code filled in, got %q", res.QuestionCode)
	}
	if len(res.Results) != 1 || res.Results[0].Votes != 30 {
		t.Errorf("Unexpected results: %+v", res.Results)
	}
	if res.TotalResponses != 40 {
		t.Errorf("Expected total_responses 40, got %d", res.TotalResponses)
	}
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Not Found", Message: "Question not found"})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.Results(context.Background(), "missing")
	if err == nil {
		t.Fatal("Expected error for 404")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.StatusCode)
	}
	if statusErr.Message != "Question not found" {
		t.Errorf("Expected server message, got %q", statusErr.Message)
	}
}

func TestPlaylistsSplitsAndDedupes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.PlaylistsResponse{
			Playlists: []string{"Late Night, Motivation", "Motivation", "All Songs"},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	playlists, err := client.Playlists(context.Background())
	if err != nil {
		t.Fatalf("Playlists failed: %v", err)
	}

	want := []string{"Late Night", "Motivation", "All Songs"}
	if len(playlists) != len(want) {
		t.Fatalf("Got %v, want %v", playlists, want)
	}
	for i := range want {
		if playlists[i] != want[i] {
			t.Errorf("playlists[%d] = %q, want %q", i, playlists[i], want[i])
		}
	}
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(srv.URL, nil)
	if _, err := client.Categories(ctx); err == nil {
		t.Error("Expected error from cancelled context")
	}
}
