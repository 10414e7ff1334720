package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gitea.jw6.us/james/syllacal/internal/staging"
)

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{
			name: "plain array",
			raw:  `[{"summary":"EXAM: Midterm"},{"summary":"LECTURE: Week 1"}]`,
			want: 2,
		},
		{
			name: "fenced markdown",
			raw:  "```json\n[{\"summary\":\"QUIZ: Chapter 3\"}]\n```",
			want: 1,
		},
		{
			name: "events wrapper object",
			raw:  `{"events":[{"summary":"ASSIGNMENT: HW1"}]}`,
			want: 1,
		},
		{
			name:    "prose",
			raw:     "Here are your events!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := parseEvents(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEvents: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestApplyTimezone(t *testing.T) {
	loc := time.FixedZone("TEST", -5*3600)
	events := []staging.Event{
		{Start: &staging.DateTime{DateTime: "2026-09-10T14:00:00"}},
		{Start: &staging.DateTime{DateTime: "2026-09-10T14:00:00Z"}},
		{Start: &staging.DateTime{DateTime: "2026-09-10T14:00:00+02:00"}},
		{Start: &staging.DateTime{Date: "2026-09-10"}},
	}

	out := applyTimezone(events, loc)

	if got := out[0].Start.DateTime; got != "2026-09-10T14:00:00-05:00" {
		t.Errorf("naive time not localized: %s", got)
	}
	if got := out[1].Start.DateTime; got != "2026-09-10T14:00:00Z" {
		t.Errorf("UTC time changed: %s", got)
	}
	if got := out[2].Start.DateTime; got != "2026-09-10T14:00:00+02:00" {
		t.Errorf("offset time changed: %s", got)
	}
	if got := out[3].Start.Date; got != "2026-09-10" {
		t.Errorf("all-day date changed: %s", got)
	}
}

func TestFilterPast(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	events := []staging.Event{
		{Summary: "past all-day", Start: &staging.DateTime{Date: "2026-09-01"}},
		{Summary: "today all-day", Start: &staging.DateTime{Date: "2026-09-15"}},
		{Summary: "past timed", Start: &staging.DateTime{DateTime: "2026-09-15T09:00:00Z"}},
		{Summary: "future timed", Start: &staging.DateTime{DateTime: "2026-09-15T15:00:00Z"}},
		{Summary: "unparseable", Start: &staging.DateTime{Date: "sometime"}},
		{Summary: "no start"},
	}

	out := filterPast(events, now)

	got := make([]string, 0, len(out))
	for _, e := range out {
		got = append(got, e.Summary)
	}
	want := []string{"today all-day", "future timed", "unparseable", "no start"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGeminiExtractorFallback(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/models/"), ":generateContent")
		calls = append(calls, r.Header.Get("x-goog-api-key")+"/"+model)

		// First key is exhausted on every model; the second key's first
		// model succeeds.
		if r.Header.Get("x-goog-api-key") == "key-1" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{
						{"text": `[{"summary":"EXAM: Final","start":{"date":"2099-12-01"},"end":{"date":"2099-12-02"}}]`},
					},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	g := NewGeminiExtractor([]string{"key-1", "key-2"}, []string{"model-a", "model-b"})
	g.baseURL = srv.URL
	g.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }
	g.loc = time.UTC

	events, err := g.Extract(context.Background(), []byte("%PDF-1.4"), "application/pdf", []string{"Exam"}, "5")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 1 || events[0].Summary != "EXAM: Final" {
		t.Errorf("unexpected events: %+v", events)
	}

	wantCalls := []string{"key-1/model-a", "key-1/model-b", "key-2/model-a"}
	if fmt.Sprint(calls) != fmt.Sprint(wantCalls) {
		t.Errorf("call order %v, want %v", calls, wantCalls)
	}
}

func TestGeminiExtractorAllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	g := NewGeminiExtractor([]string{"key-1"}, []string{"model-a"})
	g.baseURL = srv.URL

	if _, err := g.Extract(context.Background(), nil, "application/pdf", nil, "1"); err == nil {
		t.Fatal("expected error when every model fails")
	}
}

func TestBuildPromptCategories(t *testing.T) {
	p := buildPrompt([]string{"Exam", "Quiz"}, "7")
	if !strings.Contains(p, "Exam, Quiz") {
		t.Error("prompt missing category list")
	}
	if !strings.Contains(p, `"colorId": "7"`) {
		t.Error("prompt missing color id")
	}

	p = buildPrompt(nil, "1")
	if !strings.Contains(p, "All academic events") {
		t.Error("prompt missing category fallback")
	}
}
