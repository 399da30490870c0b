package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"weathercard/config"
	"weathercard/internal/display"
	"weathercard/internal/refresher"
	"weathercard/internal/weather"
	"weathercard/internal/widget"
	"weathercard/web"
)

type Server struct {
	router     *gin.Engine
	server     *http.Server
	port       int
	webPath    string
	logger     *slog.Logger
	service    *widget.Service
	recorder   *display.Recorder
	refresher  *refresher.Refresher
	wallpapers *wallpaperResolver

	configPath  string
	configMutex sync.RWMutex
	weatherCfg  config.WeatherConfig
	saveWeather func(path string, cfg config.WeatherConfig) error
}

type ServerConfig struct {
	Port       int
	WebPath    string
	Service    *widget.Service
	Recorder   *display.Recorder
	Refresher  *refresher.Refresher
	Weather    config.WeatherConfig
	Background config.BackgroundConfig
	ConfigPath string
	Logger     *slog.Logger
}

func NewServer(cfg ServerConfig) *Server {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	recorder := cfg.Recorder
	if recorder == nil {
		recorder = display.NewRecorder()
	}

	s := &Server{
		router:      router,
		port:        cfg.Port,
		webPath:     cfg.WebPath,
		logger:      logger.With("component", "api.server"),
		service:     cfg.Service,
		recorder:    recorder,
		refresher:   cfg.Refresher,
		wallpapers:  newWallpaperResolver(cfg.Background),
		configPath:  cfg.ConfigPath,
		weatherCfg:  cfg.Weather,
		saveWeather: config.SaveWeather,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	tmpl := template.Must(template.ParseFS(web.Templates, "templates/*.html"))
	s.router.SetHTMLTemplate(tmpl)

	// Static assets (theme images, stylesheet) live next to the binary.
	if s.webPath != "" {
		static := filepath.Join(s.webPath, "static")
		if info, err := os.Stat(static); err == nil && info.IsDir() {
			s.router.Static("/static", static)
		}
	}

	s.router.GET("/", s.widgetHandler)
	s.router.HEAD("/", s.widgetHandler)

	// Health check
	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api/v1")
	{
		api.GET("/weather", s.weatherHandler)
		api.GET("/display", s.displayHandler)
		api.GET("/theme", s.themeHandler)
		api.GET("/background/wallpaper", s.backgroundWallpaperHandler)

		api.GET("/config/weather", s.getWeatherConfigHandler)
		api.PUT("/config/weather", s.updateWeatherConfigHandler)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("API server starting", "port", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// widgetHandler renders the card. With ?city= it runs a lookup first,
// otherwise it shows whatever the shared display currently holds.
func (s *Server) widgetHandler(c *gin.Context) {
	query, searched := c.GetQuery("city")

	data := gin.H{
		"title": "Weather",
		"query": strings.TrimSpace(query),
	}

	if searched {
		fields, err := s.service.Lookup(c.Request.Context(), query)
		data["fields"] = fields
		if err != nil {
			data["alert"] = widget.UserMessage(err)
		}
	} else {
		state := s.recorder.State()
		data["fields"] = state.Fields
		data["alert"] = state.Alert
	}

	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) healthHandler(c *gin.Context) {
	refreshing := false
	if s.refresher != nil {
		refreshing = s.refresher.IsRunning()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"provider":   s.service.Provider().Name(),
		"refreshing": refreshing,
		"timestamp":  time.Now(),
	})
}

func (s *Server) weatherHandler(c *gin.Context) {
	fields, err := s.service.Lookup(c.Request.Context(), c.Query("city"))
	if err != nil {
		status, kind := lookupStatus(err)
		c.JSON(status, gin.H{
			"error": widget.UserMessage(err),
			"kind":  kind,
		})
		return
	}
	c.JSON(http.StatusOK, fields)
}

func lookupStatus(err error) (int, string) {
	var validationErr *widget.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, "validation"
	}
	var lookupErr *widget.LookupError
	if errors.As(err, &lookupErr) {
		if lookupErr.Kind == widget.KindNotFound {
			return http.StatusNotFound, string(lookupErr.Kind)
		}
		return http.StatusBadGateway, string(lookupErr.Kind)
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) displayHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.recorder.State())
}

func (s *Server) themeHandler(c *gin.Context) {
	isDay := true
	if raw := c.Query("day"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'day' value"})
			return
		}
		isDay = parsed
	}

	c.JSON(http.StatusOK, widget.SelectTheme(c.Query("condition"), isDay))
}

type WeatherConfigResponse struct {
	Provider       string `json:"provider"`
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	Units          string `json:"units"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type WeatherConfigRequest struct {
	Provider       string  `json:"provider"`
	APIKey         *string `json:"api_key"`
	BaseURL        string  `json:"base_url"`
	Units          string  `json:"units"`
	TimeoutSeconds int     `json:"timeout_seconds" binding:"omitempty,min=1,max=60"`
}

func (s *Server) getWeatherConfigHandler(c *gin.Context) {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()

	c.JSON(http.StatusOK, weatherConfigResponse(s.weatherCfg))
}

func (s *Server) updateWeatherConfigHandler(c *gin.Context) {
	var req WeatherConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.configMutex.Lock()
	next := s.weatherCfg

	if strings.TrimSpace(req.Provider) != "" {
		next.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
	}
	if req.APIKey != nil {
		next.APIKey = strings.TrimSpace(*req.APIKey)
	}
	if strings.TrimSpace(req.BaseURL) != "" {
		next.BaseURL = strings.TrimSpace(req.BaseURL)
	}
	if strings.TrimSpace(req.Units) != "" {
		next.Units = req.Units
	}
	if req.TimeoutSeconds > 0 {
		next.Timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	provider, err := weather.NewProvider(weather.Settings{
		Provider: next.Provider,
		APIKey:   next.APIKey,
		BaseURL:  next.BaseURL,
		Units:    next.Units,
		Timeout:  next.Timeout,
	})
	if err != nil {
		s.configMutex.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.weatherCfg = next
	s.configMutex.Unlock()
	s.service.SetProvider(provider)

	if err := s.saveWeather(s.configPath, next); err != nil {
		s.logger.Warn("failed to save config to file", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"message": "Configuration applied but not persisted to file",
			"warning": err.Error(),
			"config":  weatherConfigResponse(next),
		})
		return
	}

	s.logger.Info("weather configuration updated", "provider", next.Provider)

	c.JSON(http.StatusOK, gin.H{
		"message": "Weather configuration updated successfully",
		"config":  weatherConfigResponse(next),
	})
}

func weatherConfigResponse(cfg config.WeatherConfig) WeatherConfigResponse {
	return WeatherConfigResponse{
		Provider:       cfg.Provider,
		APIKey:         maskSecret(cfg.APIKey),
		BaseURL:        cfg.BaseURL,
		Units:          cfg.Units,
		TimeoutSeconds: int(cfg.Timeout.Seconds()),
	}
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
