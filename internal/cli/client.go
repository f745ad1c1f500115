package cli

import (
	"context"
	"flag"
	"os"
	"time"

	"slidesmith/pkg/deckclient"
)

// Environment fallbacks for the connection flags.
const (
	envServer = "SLIDESMITH_SERVER"
	envAPIKey = "SLIDESMITH_API_KEY"
)

const defaultServer = "http://localhost:8080"

// clientOptions carries the connection flags shared by every command.
type clientOptions struct {
	server  string
	apiKey  string
	timeout time.Duration
}

// addClientFlags registers the shared connection flags on a flag set.
func addClientFlags(fs *flag.FlagSet) *clientOptions {
	opts := &clientOptions{}
	fs.StringVar(&opts.server, "server", envDefault(envServer, defaultServer), "Server base URL")
	fs.StringVar(&opts.apiKey, "api-key", os.Getenv(envAPIKey), "API key sent as a bearer token")
	fs.DurationVar(&opts.timeout, "timeout", 60*time.Second, "Request timeout")
	return opts
}

// newClient builds a service client from the parsed flags.
func (o *clientOptions) newClient() *deckclient.Client {
	client := deckclient.NewWithTimeout(o.server, o.timeout)
	if o.apiKey != "" {
		client.SetAPIKey(o.apiKey)
	}
	return client
}

// commandContext returns the context commands run under.
func commandContext() context.Context {
	return context.Background()
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
