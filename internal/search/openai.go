package search

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/htc-global/pu-observatory/internal/core/domain"
	"github.com/htc-global/pu-observatory/internal/platform/rundate"
)

const (
	defaultModel         = "gpt-4o-mini"
	defaultSearchTimeout = 20 * time.Second
	defaultSearchRPS     = 1

	maxPromptResults = 10

	logKeyQueryID = "query_id"
	logKeyResults = "results"
)

// The provider injects the reference date textually: hosted models
// hold stale notions of "today", so "recent" has to be spelled out as
// an explicit date range in the request itself.
const searchPromptFmt = `Today's date is %s. Search the web for: %s.
Return up to %d news results published between %s and %s as a JSON array, one object per result:
[{"url": "...", "title": "...", "snippet": "...", "published_at": "YYYY-MM-DD"}]
Use an empty string for published_at when the date is unknown. Return only the JSON array, no commentary.`

// OpenAIProvider runs planned queries through an OpenAI chat model.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zerolog.Logger
}

// OpenAIConfig configures the provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	RPS     float64
}

// NewOpenAI creates the provider. The client is constructed here and
// owned by the provider; callers control its lifetime through the
// provider value, not a package global.
func NewOpenAI(cfg OpenAIConfig, logger *zerolog.Logger) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = defaultSearchRPS
	}

	return &OpenAIProvider{
		client:  openai.NewClient(cfg.APIKey),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		timeout: timeout,
		logger:  logger,
	}
}

// Search implements Provider. All failures degrade to an empty result.
func (p *OpenAIProvider) Search(ctx context.Context, q Query, maxResults int, window rundate.Window) []domain.Candidate {
	if strings.TrimSpace(q.Text) == "" {
		return nil
	}

	if maxResults <= 0 || maxResults > maxPromptResults {
		maxResults = maxPromptResults
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	prompt := fmt.Sprintf(searchPromptFmt,
		window.Reference.Format("2006-01-02"),
		q.Text,
		maxResults,
		window.Lookback.Format("2006-01-02"),
		window.Reference.Format("2006-01-02"),
	)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		p.logger.Warn().Err(err).Str(logKeyQueryID, q.ID).Msg("web search failed")
		return nil
	}

	if len(resp.Choices) == 0 {
		return nil
	}

	results := parseResults(resp.Choices[0].Message.Content, maxResults)

	p.logger.Debug().
		Str(logKeyQueryID, q.ID).
		Int(logKeyResults, len(results)).
		Msg("web search done")

	return tagQuery(results, q)
}

type searchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	PublishedAt string `json:"published_at"`
}

var (
	jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)
	bareURLPattern   = regexp.MustCompile(`https?://[^\s)\]"]+`)
)

// parseResults decodes the model's JSON array, salvaging bare URLs
// from prose when the model ignored the format instruction.
func parseResults(content string, maxResults int) []domain.Candidate {
	if raw := jsonArrayPattern.FindString(content); raw != "" {
		var results []searchResult
		if err := json.Unmarshal([]byte(raw), &results); err == nil {
			out := make([]domain.Candidate, 0, len(results))

			for _, r := range results {
				if strings.TrimSpace(r.URL) == "" {
					continue
				}

				out = append(out, domain.Candidate{
					URL:         strings.TrimSpace(r.URL),
					Title:       strings.TrimSpace(r.Title),
					Snippet:     strings.TrimSpace(r.Snippet),
					PublishedAt: strings.TrimSpace(r.PublishedAt),
				})

				if len(out) >= maxResults {
					break
				}
			}

			return out
		}
	}

	return salvageURLs(content, maxResults)
}

func salvageURLs(content string, maxResults int) []domain.Candidate {
	var out []domain.Candidate

	seen := make(map[string]struct{})

	for _, m := range bareURLPattern.FindAllString(content, -1) {
		u := strings.TrimRight(m, ".,;")
		if _, dup := seen[u]; dup {
			continue
		}

		seen[u] = struct{}{}
		out = append(out, domain.Candidate{URL: u})

		if len(out) >= maxResults {
			break
		}
	}

	return out
}

func tagQuery(items []domain.Candidate, q Query) []domain.Candidate {
	for i := range items {
		items[i].QueryID = q.ID
		items[i].QueryText = q.Text
		items[i].SourceName = SourceNameWebSearch
	}

	return items
}
