package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Point is one bar of a historical series for the chart widget.
type Point struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
}

type seriesResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

// History fetches a daily series for symbol, newest first, falling back to
// a 30-point mock series on any failure. The mock keeps the chart widget
// rendering; it carries no market information.
func (c *Client) History(ctx context.Context, symbol, interval string, outputSize int) []Point {
	if interval == "" {
		interval = "1day"
	}
	if outputSize <= 0 {
		outputSize = 30
	}

	points, err := c.fetchSeries(ctx, symbol, interval, outputSize)
	if err != nil {
		c.log.Warn("series fetch failed, using mock", "symbol", symbol, "err", err)
		return mockSeries(outputSize)
	}
	return points
}

func (c *Client) fetchSeries(ctx context.Context, symbol, interval string, outputSize int) ([]Point, error) {
	apiKey := c.keys("twelveData")
	if apiKey == "" {
		return nil, fmt.Errorf("twelveData API key not configured")
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputSize))
	q.Set("apikey", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/time_series?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s series: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("series API %d for %s", resp.StatusCode, symbol)
	}

	var sr seriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding %s series: %w", symbol, err)
	}
	if sr.Status == "error" {
		msg := sr.Message
		if msg == "" {
			msg = "API error"
		}
		return nil, fmt.Errorf("series API error for %s: %s", symbol, msg)
	}

	points := make([]Point, 0, len(sr.Values))
	for _, v := range sr.Values {
		p := Point{Date: v.Datetime}
		var err error
		if p.Value, err = parseFloat(v.Close); err != nil {
			return nil, fmt.Errorf("parsing %s close: %w", symbol, err)
		}
		if p.Open, err = parseFloat(v.Open); err != nil {
			return nil, fmt.Errorf("parsing %s open: %w", symbol, err)
		}
		if p.High, err = parseFloat(v.High); err != nil {
			return nil, fmt.Errorf("parsing %s high: %w", symbol, err)
		}
		if p.Low, err = parseFloat(v.Low); err != nil {
			return nil, fmt.Errorf("parsing %s low: %w", symbol, err)
		}
		if v.Volume != "" {
			if p.Volume, err = strconv.ParseInt(v.Volume, 10, 64); err != nil {
				return nil, fmt.Errorf("parsing %s volume: %w", symbol, err)
			}
		}
		points = append(points, p)
	}
	return points, nil
}

func mockSeries(n int) []Point {
	const base = 100.0
	points := make([]Point, 0, n)
	for i := n - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		points = append(points, Point{
			Date:   date,
			Value:  base + rand.Float64()*20 - 10,
			Open:   base + rand.Float64()*20 - 10,
			High:   base + rand.Float64()*20 - 10,
			Low:    base + rand.Float64()*20 - 10,
			Volume: rand.Int63n(1_000_000),
		})
	}
	return points
}
