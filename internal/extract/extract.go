// Package extract turns uploaded syllabus documents into candidate
// calendar events using the Gemini generateContent REST API.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gitea.jw6.us/james/syllacal/internal/staging"
)

// Extractor produces staged events from a document. Implementations may
// call out to an LLM; callers should treat the results as unreviewed.
type Extractor interface {
	Extract(ctx context.Context, doc []byte, mimeType string, categories []string, colorID string) ([]staging.Event, error)
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrNoUsableModel means every key/model combination failed.
var ErrNoUsableModel = errors.New("extract: no api key and model combination produced events")

// GeminiExtractor tries each configured API key against each model in
// order, returning the first parseable result. Free-tier keys rate
// limit per key per model, so rotation doubles as quota spreading.
type GeminiExtractor struct {
	apiKeys []string
	models  []string
	client  *http.Client
	baseURL string

	now func() time.Time
	loc *time.Location
}

func NewGeminiExtractor(apiKeys, models []string) *GeminiExtractor {
	return &GeminiExtractor{
		apiKeys: apiKeys,
		models:  models,
		client:  &http.Client{Timeout: 2 * time.Minute},
		baseURL: defaultBaseURL,
		now:     time.Now,
		loc:     time.Local,
	}
}

func (g *GeminiExtractor) Extract(ctx context.Context, doc []byte, mimeType string, categories []string, colorID string) ([]staging.Event, error) {
	prompt := buildPrompt(categories, colorID)

	var lastErr error
	for _, key := range g.apiKeys {
		for _, model := range g.models {
			events, err := g.generate(ctx, key, model, doc, mimeType, prompt)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				lastErr = err
				continue
			}
			events = applyTimezone(events, g.loc)
			return filterPast(events, g.now().In(g.loc)), nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoUsableModel, lastErr)
	}
	return nil, ErrNoUsableModel
}

func buildPrompt(categories []string, colorID string) string {
	categoriesStr := "All academic events"
	if len(categories) > 0 {
		categoriesStr = strings.Join(categories, ", ")
	}

	return fmt.Sprintf(`Analyze the provided syllabus content.
Do NOT output events such as: "The duration of [COURSE] is from [DATE] to [DATE]".

Output ONLY a JSON array of Google Calendar event objects (no prose, no markdown). Each object must match this structure and use valid JSON:
{
    "summary": "Title of the event",
    "description": "Optional details or context",
    "location": "Venue or room" (omit this key if unknown),
    "colorId": "%s",
    "start": {
        "dateTime": "YYYY-MM-DDTHH:MM:SS" (timed) OR "date": "YYYY-MM-DD" (all-day)
    },
    "end": {
        "dateTime": "YYYY-MM-DDTHH:MM:SS" OR "date": "YYYY-MM-DD"
    },
    "recurrence": [
    ],
    "reminders": {
        "useDefault": false,
        "overrides": []
    }
}

Rules:
1. For all-day events, set end.date to the day AFTER the event day.
2. Infer the correct year (current or upcoming) if not explicitly present.
3. Output ONLY the raw JSON array (no backticks, no preamble, no trailing text).
4. Keep the "reminders" object exactly as shown for every event.
5. Naming pattern:
    + Assignment -> "ASSIGNMENT: [EVENTNAME]"
    + Exam/midterm -> "EXAM: [EVENTNAME]"
    + Quiz -> "QUIZ: [EVENTNAME]"
    + Project -> "PROJECT DEADLINE: [EVENTNAME]"
    + Lecture/class -> "LECTURE: [EVENTNAME]"
6. Recurrence:
    + If not recurring, omit the recurrence key entirely.
    + If recurring, include one RRULE string, e.g., "RRULE:FREQ=WEEKLY;UNTIL=YYYYMMDD".
    + Find the course end date in the syllabus (last lecture, finals week, or explicit end-of-course date) and use it for UNTIL in YYYYMMDD.
    + If no end date is found, omit recurrence entirely.
7. Ignore ALL office hours.
8. Only include events in these categories: %s.`, colorID, categoriesStr)
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiExtractor) generate(ctx context.Context, apiKey, model string, doc []byte, mimeType, prompt string) ([]staging.Event, error) {
	reqBody := generateRequest{
		Contents: []requestContent{{
			Parts: []requestPart{
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(doc),
				}},
				{Text: prompt},
			},
		}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", model, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d", model, resp.StatusCode)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", model, err)
	}

	var text strings.Builder
	for _, c := range gr.Candidates {
		for _, p := range c.Content.Parts {
			text.WriteString(p.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%s returned empty candidate text", model)
	}

	return parseEvents(text.String())
}

// parseEvents tolerates markdown fences and an {"events": [...]} wrapper,
// both of which models emit despite being told not to.
func parseEvents(raw string) ([]staging.Event, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var events []staging.Event
	if err := json.Unmarshal([]byte(cleaned), &events); err == nil {
		return events, nil
	}

	var wrapped struct {
		Events []staging.Event `json:"events"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && wrapped.Events != nil {
		return wrapped.Events, nil
	}
	return nil, errors.New("response is not a JSON event array")
}

// applyTimezone stamps the local zone offset onto naive dateTime values
// so the calendar does not reinterpret them as UTC. All-day dates and
// values that already carry an offset pass through untouched.
func applyTimezone(events []staging.Event, loc *time.Location) []staging.Event {
	for i := range events {
		events[i].Start = localizeDateTime(events[i].Start, loc)
		events[i].End = localizeDateTime(events[i].End, loc)
	}
	return events
}

func localizeDateTime(dt *staging.DateTime, loc *time.Location) *staging.DateTime {
	if dt == nil || dt.Date != "" || dt.DateTime == "" {
		return dt
	}
	if hasOffset(dt.DateTime) {
		return dt
	}
	parsed, err := time.ParseInLocation("2006-01-02T15:04:05", dt.DateTime, loc)
	if err != nil {
		dt.DateTime += "Z"
		return dt
	}
	dt.DateTime = parsed.Format(time.RFC3339)
	return dt
}

func hasOffset(s string) bool {
	if strings.HasSuffix(s, "Z") {
		return true
	}
	if len(s) < 6 {
		return false
	}
	tail := s[len(s)-6:]
	return strings.Contains(tail, "+") || (strings.Contains(tail, "-") && tail[0] != 'T')
}

// filterPast drops events that already happened. Unparseable or missing
// start times stay in; the user reviews the staged list anyway.
func filterPast(events []staging.Event, now time.Time) []staging.Event {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := make([]staging.Event, 0, len(events))
	for _, e := range events {
		if e.Start == nil {
			out = append(out, e)
			continue
		}
		switch {
		case e.Start.Date != "":
			d, err := time.ParseInLocation("2006-01-02", e.Start.Date, now.Location())
			if err != nil || !d.Before(today) {
				out = append(out, e)
			}
		case e.Start.DateTime != "":
			dt, err := time.Parse(time.RFC3339, e.Start.DateTime)
			if err != nil || !dt.Before(now) {
				out = append(out, e)
			}
		default:
			out = append(out, e)
		}
	}
	return out
}
