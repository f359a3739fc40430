package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds all the configuration for the application.
type Config struct {
	Application struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"application"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	GeoIP struct {
		Provider       string `yaml:"provider"`
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		DatabasePath   string `yaml:"database_path"`
	} `yaml:"geoip"`
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
}

// Cfg is a global variable that will hold the loaded configuration.
var Cfg *Config

// Load reads the configuration from path, creating a default file first if
// none exists. The ABSTRACT_API_KEY environment variable overrides the
// configured API key so the key can stay out of the file entirely.
func Load(path string) error {
	Cfg = &Config{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("No %s found. Creating a default one.\n", path)
		if err := createDefault(path); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, Cfg); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	applyDefaults(Cfg)

	if key := os.Getenv("ABSTRACT_API_KEY"); key != "" {
		Cfg.GeoIP.APIKey = key
	}
	return nil
}

// applyDefaults fills in anything a hand-edited config file left blank.
func applyDefaults(c *Config) {
	if c.Application.Name == "" {
		c.Application.Name = "ipscope"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.GeoIP.Provider == "" {
		c.GeoIP.Provider = "abstract"
	}
	if c.GeoIP.BaseURL == "" {
		c.GeoIP.BaseURL = "https://ipgeolocation.abstractapi.com/v1/"
	}
	if c.GeoIP.TimeoutSeconds <= 0 {
		c.GeoIP.TimeoutSeconds = 10
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "./exports"
	}
}

// createDefault writes a config file with sensible defaults.
func createDefault(path string) error {
	defaultConfig := &Config{}
	applyDefaults(defaultConfig)
	defaultConfig.Application.Version = "1.0.0"
	defaultConfig.GeoIP.DatabasePath = "./GeoLite2-City.mmdb"

	data, err := yaml.Marshal(defaultConfig)
	if err != nil {
		return fmt.Errorf("could not marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write default config file: %w", err)
	}
	return nil
}
