package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/lox/cityexplorer/internal/provider"
)

// Config holds every setting the service reads. Each flag falls back to the
// environment variable named in its env tag.
type Config struct {
	Port        string        `env:"PORT" default:"3000" help:"HTTP listen port."`
	DatabaseURL string        `name:"database-url" env:"DATABASE_URL" default:"sqlite://data/cityexplorer.db" help:"postgres:// URL or sqlite path."`
	DBWait      time.Duration `name:"db-wait" env:"DB_WAIT" default:"30s" help:"How long to retry the initial database connection."`
	Timezone    string        `env:"TIMEZONE" default:"UTC" help:"IANA zone weather days are rendered in."`

	StoreTimeout    time.Duration `name:"store-timeout" env:"STORE_TIMEOUT" default:"5s" help:"Bound on each store query."`
	ProviderTimeout time.Duration `name:"provider-timeout" env:"PROVIDER_TIMEOUT" default:"10s" help:"Bound on each provider call."`

	GeocodeAPIKey string `name:"geocode-api-key" env:"GEOCODE_API_KEY" help:"Geocoding provider key."`
	WeatherAPIKey string `name:"weather-api-key" env:"WEATHER_API_KEY" help:"Weather provider key."`
	TrailAPIKey   string `name:"trail-api-key" env:"TRAIL_API_KEY" help:"Trails provider key."`
	MovieAPIKey   string `name:"movie-api-key" env:"MOVIE_API_KEY" help:"Movie search provider key."`

	GeocodeURL string `name:"geocode-url" env:"GEOCODE_URL" default:"https://maps.googleapis.com/maps/api/geocode/json" help:"Geocoding endpoint."`
	WeatherURL string `name:"weather-url" env:"WEATHER_URL" default:"https://api.darksky.net/forecast" help:"Weather endpoint."`
	TrailURL   string `name:"trail-url" env:"TRAIL_URL" default:"https://www.hikingproject.com/data/get-trails" help:"Trails endpoint."`
	MovieURL   string `name:"movie-url" env:"MOVIE_URL" default:"https://api.themoviedb.org/3/search/movie" help:"Movie search endpoint."`

	LogLevel  string `name:"log-level" env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level."`
	LogFormat string `name:"log-format" env:"LOG_FORMAT" default:"console" enum:"console,json" help:"Log encoding."`
}

// Validate is called by kong after parsing.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.DatabaseURL == "" {
		return errors.New("database-url must not be empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) Endpoints() provider.Endpoints {
	return provider.Endpoints{
		Geocode: c.GeocodeURL,
		Weather: c.WeatherURL,
		Trails:  c.TrailURL,
		Movies:  c.MovieURL,
	}
}

func (c *Config) Keys() provider.Keys {
	return provider.Keys{
		Geocode: c.GeocodeAPIKey,
		Weather: c.WeatherAPIKey,
		Trails:  c.TrailAPIKey,
		Movies:  c.MovieAPIKey,
	}
}

// MissingKeys names the providers with no credential configured. Those
// routes still run but the provider will reject them.
func (c *Config) MissingKeys() []provider.Name {
	var missing []provider.Name
	keys := c.Keys()
	for _, k := range []struct {
		name provider.Name
		key  string
	}{
		{provider.Geocode, keys.Geocode},
		{provider.Weather, keys.Weather},
		{provider.Trails, keys.Trails},
		{provider.Movies, keys.Movies},
	} {
		if k.key == "" {
			missing = append(missing, k.name)
		}
	}
	return missing
}

// LoadDotEnv loads variables from files that exist, without overriding the
// process environment.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Parse parses args (flags only) into a Config. Used by tests and tools that
// don't need the command tree.
func Parse(args []string) (*Config, error) {
	var cfg Config
	parser, err := kong.New(&cfg, kong.Name("cityexplorer"))
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	return &cfg, nil
}
