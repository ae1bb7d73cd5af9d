package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/retr0Tech/movie-explorer/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL, "sk-test", 2*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	return client
}

func textReply(text string) []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"content": []map[string]string{
			{"type": "text", "text": text},
		},
	})
	return payload
}

func TestRecommend(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "sk-test" {
			t.Errorf("api key header = %q", r.Header.Get("X-Api-Key"))
		}
		if r.Header.Get("Anthropic-Version") == "" {
			t.Errorf("missing version header")
		}
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "Inception") {
			t.Errorf("prompt missing title: %+v", req.Messages)
		}
		w.Write(textReply(`Here are my picks:
[
  {"title": "Interstellar", "year": "2014", "reason": "Same director, mind-bending premise."},
  {"title": "The Matrix", "year": "1999", "reason": "Reality-questioning action."}
]`))
	})

	recs, err := client.Recommend(context.Background(), "Inception", "2010", "Sci-Fi", "A thief enters dreams.")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 2 || recs[0].Title != "Interstellar" || recs[1].Year != "1999" {
		t.Fatalf("recs = %+v", recs)
	}
}

func TestRecommendDegradesOnGarbage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(textReply("I cannot help with that."))
	})

	recs, err := client.Recommend(context.Background(), "Inception", "", "", "")
	if err != nil {
		t.Fatalf("garbage reply must degrade, got error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("recs = %+v, want empty", recs)
	}
}

func TestRecommendUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := client.Recommend(context.Background(), "Inception", "", "", ""); err == nil {
		t.Fatalf("expected error on 429 upstream")
	}
}

func TestAnalyzeRatings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		prompt := req.Messages[0].Content
		if !strings.Contains(prompt, "Rotten Tomatoes: 87%") {
			t.Errorf("prompt missing ratings: %s", prompt)
		}
		w.Write(textReply(`{
  "overallSentiment": "positive",
  "sentimentScore": 88,
  "audienceReception": "Audiences loved it.",
  "criticsReception": "Critics praised the craft.",
  "keyInsights": ["strong word of mouth"],
  "summary": "Broadly acclaimed."
}`))
	})

	analysis, err := client.AnalyzeRatings(context.Background(), AnalyzeParams{
		Title:      "Inception",
		Year:       "2010",
		IMDBRating: "8.8",
		IMDBVotes:  "2,300,000",
		Ratings: []domain.Rating{
			{Source: "Rotten Tomatoes", Value: "87%"},
		},
	})
	if err != nil {
		t.Fatalf("AnalyzeRatings: %v", err)
	}
	if analysis.OverallSentiment != "positive" || analysis.SentimentScore != 88 {
		t.Fatalf("analysis = %+v", analysis)
	}
	if len(analysis.KeyInsights) != 1 {
		t.Fatalf("keyInsights = %v", analysis.KeyInsights)
	}
}

func TestAnalyzeRatingsUnparseable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(textReply("The movie was well received."))
	})

	// Unlike recommendations, a malformed analysis reply is an error.
	_, err := client.AnalyzeRatings(context.Background(), AnalyzeParams{Title: "Inception"})
	if !errors.Is(err, ErrUnparseable) {
		t.Fatalf("err = %v, want ErrUnparseable", err)
	}
}

func TestParseRecommendations(t *testing.T) {
	cases := []struct {
		name    string
		reply   string
		wantLen int
		wantErr bool
	}{
		{
			name:    "bare array",
			reply:   `[{"title": "A", "reason": "r"}]`,
			wantLen: 1,
		},
		{
			name:    "prose wrapped",
			reply:   "Sure! Here you go:\n[{\"title\": \"A\", \"reason\": \"r\"}]\nEnjoy!",
			wantLen: 1,
		},
		{
			name:    "truncated to five",
			reply:   `[{"title":"1"},{"title":"2"},{"title":"3"},{"title":"4"},{"title":"5"},{"title":"6"},{"title":"7"}]`,
			wantLen: 5,
		},
		{
			name:    "no array",
			reply:   "no recommendations available",
			wantErr: true,
		},
		{
			name:    "malformed json",
			reply:   `[{"title": }]`,
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := parseRecommendations(tc.reply)
			if tc.wantErr {
				if !errors.Is(err, ErrUnparseable) {
					t.Fatalf("err = %v, want ErrUnparseable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRecommendations: %v", err)
			}
			if len(recs) != tc.wantLen {
				t.Fatalf("len = %d, want %d", len(recs), tc.wantLen)
			}
		})
	}
}

func TestParseAnalysis(t *testing.T) {
	analysis, err := parseAnalysis("Here is the analysis:\n{\"overallSentiment\": \"mixed\", \"sentimentScore\": 55, \"keyInsights\": []}")
	if err != nil {
		t.Fatalf("parseAnalysis: %v", err)
	}
	if analysis.OverallSentiment != "mixed" || analysis.SentimentScore != 55 {
		t.Fatalf("analysis = %+v", analysis)
	}

	if _, err := parseAnalysis("nothing here"); !errors.Is(err, ErrUnparseable) {
		t.Fatalf("err = %v, want ErrUnparseable", err)
	}
}

func FuzzExtractJSON(f *testing.F) {
	f.Add(`[{"title":"A"}]`)
	f.Add("prose [1, 2] more prose")
	f.Add("{}")
	f.Add("][")
	f.Add("")
	f.Fuzz(func(t *testing.T, reply string) {
		for _, pair := range [][2]byte{{'[', ']'}, {'{', '}'}} {
			raw, ok := extractJSON(reply, pair[0], pair[1])
			if !ok {
				continue
			}
			if len(raw) < 2 {
				t.Fatalf("span too short: %q", raw)
			}
			if raw[0] != pair[0] || raw[len(raw)-1] != pair[1] {
				t.Fatalf("span not delimited: %q", raw)
			}
		}
	})
}
