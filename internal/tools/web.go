package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
	"github.com/ChamsBouzaiene/solvr/internal/oracle"
)

const (
	searchResultLimit = 5
	pageCharLimit     = 6000
	contextCharLimit  = 8000
	fetchTimeout      = 12 * time.Second
	userAgent         = "Mozilla/5.0 (solvr/1.0; +https://example.local)"
)

var (
	ddgResultRe   = regexp.MustCompile(`<a[^>]+class="result__a"[^>]+href="([^"]+)"`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	ddgRedirectRe = regexp.MustCompile(`uddg=([^&]+)`)
)

const researchSystem = "You are a precise research assistant. Answer the question ONLY from the provided context. " +
	"If the answer is uncertain from the context, say 'unknown'."

// NewWebSearchTool searches DuckDuckGo, extracts readable text from the top
// results, and has the oracle answer the task question from that text only.
func NewWebSearchTool(client oracle.Client, httpClient *http.Client) agent.Tool {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return agent.Tool{
		Name:        "web_search",
		Description: "Search the web and answer the current question from the top result pages.",
		SchemaJSON:  `{"type":"object","properties":{"query":{"type":"string","description":"Search query"}},"required":["query"]}`,
		Aliases: map[string][]string{
			"query": {"q", "question", "topic", "prompt", "text", "search"},
		},
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			if client == nil {
				return "ERROR: web_search: reasoning service not configured.", nil
			}
			query, _ := params["query"].(string)
			query = strings.TrimSpace(query)
			if query == "" {
				query = strings.TrimSpace(st.Question)
			}

			links, err := searchDuckDuckGo(ctx, httpClient, query, searchResultLimit)
			if err != nil {
				return fmt.Sprintf("ERROR: search failed: %v", err), nil
			}
			if len(links) == 0 {
				return "ERROR: no search results.", nil
			}

			var parts []string
			for _, link := range links {
				text := fetchPageText(ctx, httpClient, link)
				if text != "" {
					parts = append(parts, text)
				}
			}
			evidence := clampText(strings.Join(parts, "\n\n---\n\n"), contextCharLimit)
			if evidence == "" {
				return "ERROR: could not extract text from results.", nil
			}

			return answerFromContext(ctx, client, st.Question, evidence, "")
		},
	}
}

// NewWikiLookupTool pulls content from English Wikipedia (REST summary
// first, full page as fallback) and answers the task question from it.
func NewWikiLookupTool(client oracle.Client, httpClient *http.Client) agent.Tool {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return agent.Tool{
		Name:        "wiki_lookup",
		Description: "Look up an English Wikipedia page and answer the current question from it.",
		SchemaJSON:  `{"type":"object","properties":{"title_or_query":{"type":"string","description":"Page title or search phrase"}},"required":["title_or_query"]}`,
		Aliases: map[string][]string{
			"title_or_query": {"query", "q", "title", "page", "topic", "text"},
		},
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			if client == nil {
				return "ERROR: wiki_lookup: reasoning service not configured.", nil
			}
			query, _ := params["title_or_query"].(string)
			query = strings.TrimSpace(query)
			if query == "" {
				query = strings.TrimSpace(st.Question)
			}
			slug := strings.ReplaceAll(query, " ", "_")

			if summary := fetchWikiSummary(ctx, httpClient, slug); summary != "" {
				answer, err := answerFromContext(ctx, client, st.Question, summary, "")
				if err == nil && answer != "unknown" {
					return answer, nil
				}
			}

			pageText := fetchPageText(ctx, httpClient, "https://en.wikipedia.org/wiki/"+url.PathEscape(slug))
			if pageText == "" {
				return "ERROR: wiki content not found.", nil
			}
			return answerFromContext(ctx, client, st.Question, pageText,
				"If you don't find it here, reply 'unknown'.")
		},
	}
}

func answerFromContext(ctx context.Context, client oracle.Client, question, evidence, hint string) (string, error) {
	system := researchSystem
	if hint != "" {
		system += " " + hint
	}
	user := fmt.Sprintf("Question:\n%s\n\nContext:\n%s\n\nGive the final answer only, no citations, no preamble.",
		question, evidence)
	out, err := client.Complete(ctx, system, user)
	if err != nil {
		return fmt.Sprintf("ERROR: answer extraction failed: %v", err), nil
	}
	return strings.TrimSpace(out), nil
}

// searchDuckDuckGo scrapes the HTML endpoint, which needs no API key. Result
// hrefs are redirect links carrying the target in the uddg query parameter.
func searchDuckDuckGo(ctx context.Context, httpClient *http.Client, query string, limit int) ([]string, error) {
	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	body, err := fetchURL(ctx, httpClient, endpoint)
	if err != nil {
		return nil, err
	}

	var links []string
	seen := make(map[string]struct{})
	for _, m := range ddgResultRe.FindAllStringSubmatch(body, -1) {
		link := html.UnescapeString(m[1])
		if r := ddgRedirectRe.FindStringSubmatch(link); r != nil {
			if decoded, err := url.QueryUnescape(r[1]); err == nil {
				link = decoded
			}
		}
		if !strings.HasPrefix(link, "http") {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
		if len(links) >= limit {
			break
		}
	}
	return links, nil
}

// fetchPageText downloads a page and reduces it to readable article text.
// Failures yield an empty string; a single dead link should not sink the
// whole search.
func fetchPageText(ctx context.Context, httpClient *http.Client, pageURL string) string {
	body, err := fetchURL(ctx, httpClient, pageURL)
	if err != nil {
		return ""
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(body), parsed)
	if err != nil {
		return ""
	}
	text := whitespaceRe.ReplaceAllString(article.TextContent, " ")
	return clampText(strings.TrimSpace(text), pageCharLimit)
}

func fetchWikiSummary(ctx context.Context, httpClient *http.Client, slug string) string {
	body, err := fetchURL(ctx, httpClient,
		"https://en.wikipedia.org/api/rest_v1/page/summary/"+url.PathEscape(slug))
	if err != nil {
		return ""
	}
	var summary struct {
		Title   string `json:"title"`
		Extract string `json:"extract"`
	}
	if err := json.Unmarshal([]byte(body), &summary); err != nil || summary.Extract == "" {
		return ""
	}
	return summary.Title + ": " + summary.Extract
}

func fetchURL(ctx context.Context, httpClient *http.Client, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func clampText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
