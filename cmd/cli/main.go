package main

import (
	"os"
)

func main() {
	c := CLI{
		BaseURL:   envOr("API_BASE", "http://localhost:8080"),
		Password:  os.Getenv("STATUSPULSE_PASSWORD"),
		OutStream: os.Stdout,
		ErrStream: os.Stderr,
	}
	os.Exit(c.Run(os.Args[1:]))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
