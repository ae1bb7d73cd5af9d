package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/retr0Tech/movie-explorer/internal/domain"
)

// ErrUnparseable is returned when the model reply does not contain the
// requested JSON payload.
var ErrUnparseable = errors.New("ai: unparseable model reply")

const (
	apiVersion = "2023-06-01"
	model      = "claude-3-5-haiku-20241022"
	maxTokens  = 1024

	maxRecommendations = 5
)

// Client defines the contract for the generative-AI provider.
type Client interface {
	Recommend(ctx context.Context, title, year, genre, plot string) ([]domain.Recommendation, error)
	AnalyzeRatings(ctx context.Context, params AnalyzeParams) (domain.RatingsAnalysis, error)
}

// AnalyzeParams carries the rating context handed to the model for sentiment
// analysis.
type AnalyzeParams struct {
	Title      string
	Ratings    []domain.Rating
	IMDBRating string
	IMDBVotes  string
	Plot       string
	Genre      string
	Year       string
}

// HTTPClient implements Client against the Anthropic Messages API.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed AI client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ai url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Recommend asks the model for up to five similar titles. A reply without a
// recognizable JSON array yields an empty slice rather than an error; the
// feature degrades to "no suggestions" instead of failing the request.
func (c *HTTPClient) Recommend(ctx context.Context, title, year, genre, plot string) ([]domain.Recommendation, error) {
	reply, err := c.complete(ctx, buildRecommendPrompt(title, year, genre, plot))
	if err != nil {
		return nil, err
	}

	recs, err := parseRecommendations(reply)
	if err != nil {
		c.logger.Printf("ai: could not parse recommendations reply: %v", err)
		return []domain.Recommendation{}, nil
	}
	return recs, nil
}

// AnalyzeRatings asks the model for a sentiment breakdown of a title's
// ratings. Unlike Recommend, a malformed reply is an upstream error: a
// fabricated neutral analysis would misrepresent the data.
func (c *HTTPClient) AnalyzeRatings(ctx context.Context, params AnalyzeParams) (domain.RatingsAnalysis, error) {
	reply, err := c.complete(ctx, buildAnalyzePrompt(params))
	if err != nil {
		return domain.RatingsAnalysis{}, err
	}
	return parseAnalysis(reply)
}

func (c *HTTPClient) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: "/v1/messages"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("ai: unexpected status %d", resp.StatusCode)
		return "", fmt.Errorf("ai: upstream returned %d", resp.StatusCode)
	}

	var payload messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}

	for _, block := range payload.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", ErrUnparseable
}

func buildRecommendPrompt(title, year, genre, plot string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the movie %q", title)
	if year != "" {
		fmt.Fprintf(&b, " (%s)", year)
	}
	if genre != "" {
		fmt.Fprintf(&b, " which is a %s movie", genre)
	}
	if plot != "" {
		fmt.Fprintf(&b, " with the plot: %s", plot)
	}
	b.WriteString("\n\nPlease recommend exactly 5 similar movies that fans of this movie would enjoy. ")
	b.WriteString("For each recommendation provide the movie title, the year if known, and a one-sentence reason why it is similar.\n\n")
	b.WriteString(`Format your response as a JSON array with this structure:
[
  {
    "title": "Movie Title",
    "year": "2020",
    "reason": "Brief explanation of similarity"
  }
]

Only return the JSON array, no additional text.`)
	return b.String()
}

func buildAnalyzePrompt(params AnalyzeParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the public reception of the movie %q", params.Title)
	if params.Year != "" {
		fmt.Fprintf(&b, " (%s)", params.Year)
	}
	if params.Genre != "" {
		fmt.Fprintf(&b, ", a %s movie", params.Genre)
	}
	b.WriteString(".\n\nRatings:\n")
	for _, r := range params.Ratings {
		fmt.Fprintf(&b, "- %s: %s\n", r.Source, r.Value)
	}
	if params.IMDBRating != "" {
		fmt.Fprintf(&b, "- IMDb: %s (%s votes)\n", params.IMDBRating, params.IMDBVotes)
	}
	if params.Plot != "" {
		fmt.Fprintf(&b, "\nPlot: %s\n", params.Plot)
	}
	b.WriteString(`
Respond with a single JSON object with this structure:
{
  "overallSentiment": "positive",
  "sentimentScore": 88,
  "audienceReception": "one sentence",
  "criticsReception": "one sentence",
  "keyInsights": ["insight"],
  "summary": "one or two sentences"
}

overallSentiment must be one of "positive", "mixed", or "negative" and
sentimentScore an integer from 0 to 100. Only return the JSON object, no
additional text.`)
	return b.String()
}

// parseRecommendations extracts the first JSON array from the reply,
// tolerating surrounding prose.
func parseRecommendations(reply string) ([]domain.Recommendation, error) {
	raw, ok := extractJSON(reply, '[', ']')
	if !ok {
		return nil, ErrUnparseable
	}
	var recs []domain.Recommendation
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs, nil
}

// parseAnalysis extracts the first JSON object from the reply.
func parseAnalysis(reply string) (domain.RatingsAnalysis, error) {
	raw, ok := extractJSON(reply, '{', '}')
	if !ok {
		return domain.RatingsAnalysis{}, ErrUnparseable
	}
	var analysis domain.RatingsAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return domain.RatingsAnalysis{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return analysis, nil
}

// extractJSON returns the outermost open...closing span of the reply.
func extractJSON(reply string, open, closing byte) (string, bool) {
	start := strings.IndexByte(reply, open)
	end := strings.LastIndexByte(reply, closing)
	if start < 0 || end <= start {
		return "", false
	}
	return reply[start : end+1], true
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
