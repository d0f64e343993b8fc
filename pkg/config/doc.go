// Package config loads typed configuration structs from environment
// variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: an
// optional .env file is loaded once per process, then struct fields are
// populated from their env tags. Each configuration type is parsed at most
// once and cached, so every component can call Load for its own config
// without coordinating.
//
//	type Config struct {
//	    BaseURL string `env:"APP_BASE_URL,required"`
//	    Port    int    `env:"PORT" envDefault:"8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
