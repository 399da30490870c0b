package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"weathercard/config"
	"weathercard/internal/widget"
)

const (
	unsplashWallpaperTTL   = 2 * time.Hour
	defaultUnsplashURL     = "https://api.unsplash.com/photos/random"
	defaultBackgroundQuery = "sky landscape"
	userAgent              = "WeatherCard/1.0"
)

type backgroundWallpaperPayload struct {
	Provider string       `json:"provider"`
	Theme    widget.Theme `json:"theme"`
	URL      string       `json:"url"`
	Title    string       `json:"title,omitempty"`
	Credit   string       `json:"credit,omitempty"`
	Query    string       `json:"query,omitempty"`
}

type unsplashResponse struct {
	Urls struct {
		Regular string `json:"regular"`
		Full    string `json:"full"`
	} `json:"urls"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
}

type wallpaperCacheEntry struct {
	FetchedAt time.Time
	Payload   backgroundWallpaperPayload
}

type backgroundChoice struct {
	UnsplashQuery string
	BingIndex     int
}

// backgroundChoices gives every theme a photo search and a Bing archive slot.
var backgroundChoices = map[widget.Theme]backgroundChoice{
	widget.ThemeSummer: {UnsplashQuery: "sunny sky", BingIndex: 1},
	widget.ThemeRain:   {UnsplashQuery: "rainy sky", BingIndex: 4},
	widget.ThemeSnow:   {UnsplashQuery: "snowy landscape", BingIndex: 3},
	widget.ThemeWinter: {UnsplashQuery: "night sky", BingIndex: 0},
}

// wallpaperResolver finds a remote photo matching a theme. Only wallpaper
// metadata is cached; weather lookups never are.
type wallpaperResolver struct {
	unsplashKey string
	bingMarket  string
	unsplashURL string
	bingURL     string
	client      *http.Client
	now         func() time.Time

	mu    sync.Mutex
	cache map[string]wallpaperCacheEntry
}

func newWallpaperResolver(cfg config.BackgroundConfig) *wallpaperResolver {
	return &wallpaperResolver{
		unsplashKey: strings.TrimSpace(cfg.UnsplashAccessKey),
		bingMarket:  sanitizeBingMarket(cfg.BingMarket),
		unsplashURL: defaultUnsplashURL,
		bingURL:     defaultBingURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		now:         time.Now,
		cache:       map[string]wallpaperCacheEntry{},
	}
}

func pickBackgroundChoice(theme widget.Theme) backgroundChoice {
	if choice, ok := backgroundChoices[theme]; ok {
		return choice
	}
	return backgroundChoice{UnsplashQuery: defaultBackgroundQuery, BingIndex: 0}
}

// backgroundWallpaperHandler resolves ?theme=, defaulting to the theme on display.
func (s *Server) backgroundWallpaperHandler(c *gin.Context) {
	theme := s.recorder.State().Fields.Theme.Theme
	if raw := c.Query("theme"); raw != "" {
		parsed, ok := widget.ParseTheme(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown theme %q", raw)})
			return
		}
		theme = parsed
	}
	if theme == "" {
		theme = widget.ThemeSummer
	}

	market := s.wallpapers.bingMarket
	if raw := c.Query("mkt"); raw != "" {
		market = sanitizeBingMarket(raw)
	}

	payload, err := s.wallpapers.resolve(c.Request.Context(), theme, market)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch wallpaper", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (r *wallpaperResolver) resolve(ctx context.Context, theme widget.Theme, market string) (backgroundWallpaperPayload, error) {
	choice := pickBackgroundChoice(theme)

	if r.unsplashKey != "" {
		payload, err := r.cached("unsplash:"+choice.UnsplashQuery, unsplashWallpaperTTL, func() (backgroundWallpaperPayload, error) {
			return r.fetchUnsplashWallpaper(ctx, choice.UnsplashQuery)
		})
		if err == nil {
			payload.Theme = theme
			return payload, nil
		}
	}

	key := fmt.Sprintf("bing:%s:%d", market, choice.BingIndex)
	payload, err := r.cached(key, bingWallpaperTTL, func() (backgroundWallpaperPayload, error) {
		return r.fetchBingWallpaper(ctx, market, choice.BingIndex)
	})
	if err != nil {
		return backgroundWallpaperPayload{}, err
	}
	payload.Theme = theme
	return payload, nil
}

// cached serves a fresh entry, refetches an expired one and falls back to the
// expired entry when the refetch fails.
func (r *wallpaperResolver) cached(key string, ttl time.Duration, fetch func() (backgroundWallpaperPayload, error)) (backgroundWallpaperPayload, error) {
	now := r.now()
	r.mu.Lock()
	entry, ok := r.cache[key]
	r.mu.Unlock()
	if ok && now.Sub(entry.FetchedAt) < ttl {
		return entry.Payload, nil
	}

	payload, err := fetch()
	if err != nil {
		if ok {
			return entry.Payload, nil
		}
		return backgroundWallpaperPayload{}, err
	}

	r.mu.Lock()
	r.cache[key] = wallpaperCacheEntry{FetchedAt: now, Payload: payload}
	r.mu.Unlock()
	return payload, nil
}

func (r *wallpaperResolver) fetchUnsplashWallpaper(ctx context.Context, query string) (backgroundWallpaperPayload, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "portrait")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.unsplashURL+"?"+params.Encode(), nil)
	if err != nil {
		return backgroundWallpaperPayload{}, fmt.Errorf("unsplash request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+r.unsplashKey)
	req.Header.Set("Accept-Version", "v1")
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return backgroundWallpaperPayload{}, fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return backgroundWallpaperPayload{}, fmt.Errorf("unsplash bad status: %s", resp.Status)
	}

	var payload unsplashResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return backgroundWallpaperPayload{}, fmt.Errorf("unsplash decode: %w", err)
	}

	imageURL := strings.TrimSpace(payload.Urls.Regular)
	if imageURL == "" {
		imageURL = strings.TrimSpace(payload.Urls.Full)
	}
	if imageURL == "" {
		return backgroundWallpaperPayload{}, fmt.Errorf("unsplash image URL is missing")
	}

	title := strings.TrimSpace(payload.Description)
	if title == "" {
		title = strings.TrimSpace(payload.AltDescription)
	}

	credit := ""
	if author := strings.TrimSpace(payload.User.Name); author != "" {
		credit = fmt.Sprintf("Photo by %s / Unsplash", author)
	}

	return backgroundWallpaperPayload{
		Provider: "unsplash",
		URL:      imageURL,
		Title:    title,
		Credit:   credit,
		Query:    query,
	}, nil
}
