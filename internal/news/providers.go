package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Provider is one link of the news fallback chain.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, category string, limit int) ([]Article, error)
}

// KeyFunc resolves a credential slot to its stored value.
type KeyFunc func(service string) string

// --- NewsAPI provider ---

type newsapiProvider struct {
	baseURL string
	country string
	keySlot string
	keys    KeyFunc
	client  *http.Client
}

type newsapiResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		URL         string  `json:"url"`
		URLToImage  *string `json:"urlToImage"`
		PublishedAt string  `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (p *newsapiProvider) Name() string { return "newsapi" }

func (p *newsapiProvider) Fetch(ctx context.Context, category string, limit int) ([]Article, error) {
	apiKey := p.keys(p.keySlot)
	if apiKey == "" {
		return nil, fmt.Errorf("newsapi key not configured")
	}

	q := url.Values{}
	q.Set("country", p.country)
	q.Set("category", category)
	q.Set("pageSize", strconv.Itoa(limit))
	q.Set("apiKey", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/top-headlines?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("newsapi %d: %s", resp.StatusCode, string(b))
	}

	var nr newsapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("decoding newsapi response: %w", err)
	}
	if nr.Status == "error" {
		msg := nr.Message
		if msg == "" {
			msg = "NewsAPI error"
		}
		return nil, fmt.Errorf("newsapi: %s", msg)
	}
	if len(nr.Articles) == 0 {
		return nil, fmt.Errorf("newsapi returned no articles")
	}

	articles := make([]Article, 0, len(nr.Articles))
	for _, a := range nr.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			Source:      a.Source.Name,
			Category:    category,
		})
	}
	return articles, nil
}

// --- GNews provider ---

type gnewsProvider struct {
	baseURL string
	lang    string
	keySlot string
	keys    KeyFunc
	client  *http.Client
}

type gnewsResponse struct {
	Errors   []string `json:"errors"`
	Articles []struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		URL         string  `json:"url"`
		Image       *string `json:"image"`
		PublishedAt string  `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (p *gnewsProvider) Name() string { return "gnews" }

func (p *gnewsProvider) Fetch(ctx context.Context, category string, limit int) ([]Article, error) {
	apiKey := p.keys(p.keySlot)
	if apiKey == "" {
		return nil, fmt.Errorf("gnews key not configured")
	}

	q := url.Values{}
	q.Set("category", category)
	q.Set("lang", p.lang)
	q.Set("max", strconv.Itoa(limit))
	q.Set("apikey", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/top-headlines?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gnews request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("gnews %d: %s", resp.StatusCode, string(b))
	}

	var gr gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decoding gnews response: %w", err)
	}
	if len(gr.Errors) > 0 {
		return nil, fmt.Errorf("gnews: %s", gr.Errors[0])
	}
	if len(gr.Articles) == 0 {
		return nil, fmt.Errorf("gnews returned no articles")
	}

	articles := make([]Article, 0, len(gr.Articles))
	for _, a := range gr.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.Image,
			PublishedAt: a.PublishedAt,
			Source:      a.Source.Name,
			Category:    category,
		})
	}
	return articles, nil
}
