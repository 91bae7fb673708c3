package main

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"ws://localhost:8080/ws"`
	// CHAT_NAME is sent on register; the server falls back to "User" when empty
	Name   string `envconfig:"CHAT_NAME"`
	Origin string `envconfig:"CHAT_ORIGIN" default:"http://localhost:8080"`
	// CHAT_COLOURS enables colorized output
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
