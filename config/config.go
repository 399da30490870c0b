package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Weather    WeatherConfig    `mapstructure:"weather"`
	Display    DisplayConfig    `mapstructure:"display"`
	API        APIConfig        `mapstructure:"api"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Refresh    RefreshConfig    `mapstructure:"refresh"`
	Background BackgroundConfig `mapstructure:"background"`
	Log        LogConfig        `mapstructure:"log"`
}

type WeatherConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Units    string        `mapstructure:"units"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type DisplayConfig struct {
	// Timezone is "local", "city" or an IANA zone name.
	Timezone string `mapstructure:"timezone"`
}

type APIConfig struct {
	Port    int    `mapstructure:"port"`
	Enabled bool   `mapstructure:"enabled"`
	WebPath string `mapstructure:"web_path"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type RefreshConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	City     string        `mapstructure:"city"`
	Interval time.Duration `mapstructure:"interval"`
}

type BackgroundConfig struct {
	UnsplashAccessKey string `mapstructure:"unsplash_access_key"`
	BingMarket        string `mapstructure:"bing_market"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/weathercard")
	}

	viper.SetEnvPrefix("WEATHERCARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("weather.provider", "openweather")
	viper.SetDefault("weather.api_key", "")
	viper.SetDefault("weather.base_url", "https://api.openweathermap.org")
	viper.SetDefault("weather.units", "metric")
	viper.SetDefault("weather.timeout", "10s")
	viper.SetDefault("display.timezone", "local")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.enabled", true)
	viper.SetDefault("api.web_path", "./web")
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic_prefix", "weathercard")
	viper.SetDefault("mqtt.client_id", "weathercard")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("refresh.enabled", false)
	viper.SetDefault("refresh.city", "")
	viper.SetDefault("refresh.interval", "10m")
	viper.SetDefault("background.unsplash_access_key", "")
	viper.SetDefault("background.bing_market", "en-GB")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveWeather writes the weather section back to the config file at path.
func SaveWeather(path string, cfg WeatherConfig) error {
	if path == "" {
		path = "config.yaml"
	}
	viper.SetConfigFile(path)

	viper.Set("weather.provider", cfg.Provider)
	viper.Set("weather.api_key", cfg.APIKey)
	viper.Set("weather.base_url", cfg.BaseURL)
	viper.Set("weather.units", cfg.Units)
	viper.Set("weather.timeout", cfg.Timeout.String())

	return viper.WriteConfig()
}
