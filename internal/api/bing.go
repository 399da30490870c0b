package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	bingWallpaperTTL  = 6 * time.Hour
	defaultBingURL    = "https://www.bing.com/HPImageArchive.aspx"
	defaultBingMarket = "en-GB"
	bingHost          = "https://www.bing.com"
)

var bingMarketPattern = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}$`)

type bingWallpaperResponse struct {
	Images []bingWallpaperImage `json:"images"`
}

type bingWallpaperImage struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Copyright string `json:"copyright"`
}

func sanitizeBingMarket(value string) string {
	trimmed := strings.TrimSpace(value)
	if bingMarketPattern.MatchString(trimmed) {
		return trimmed
	}
	return defaultBingMarket
}

func (r *wallpaperResolver) fetchBingWallpaper(ctx context.Context, market string, index int) (backgroundWallpaperPayload, error) {
	params := url.Values{}
	params.Set("format", "js")
	params.Set("idx", strconv.Itoa(index))
	params.Set("n", "1")
	params.Set("mkt", market)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.bingURL+"?"+params.Encode(), nil)
	if err != nil {
		return backgroundWallpaperPayload{}, fmt.Errorf("bing request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return backgroundWallpaperPayload{}, fmt.Errorf("bing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return backgroundWallpaperPayload{}, fmt.Errorf("bing bad status: %s", resp.Status)
	}

	var payload bingWallpaperResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return backgroundWallpaperPayload{}, fmt.Errorf("bing decode: %w", err)
	}
	if len(payload.Images) == 0 || strings.TrimSpace(payload.Images[0].URL) == "" {
		return backgroundWallpaperPayload{}, fmt.Errorf("bing image URL is missing")
	}

	image := payload.Images[0]
	imageURL := strings.TrimSpace(image.URL)
	if !strings.HasPrefix(imageURL, "http") {
		imageURL = bingHost + imageURL
	}

	return backgroundWallpaperPayload{
		Provider: "bing",
		URL:      imageURL,
		Title:    strings.TrimSpace(image.Title),
		Credit:   strings.TrimSpace(image.Copyright),
	}, nil
}
