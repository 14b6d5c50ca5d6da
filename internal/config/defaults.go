package config

import "github.com/spf13/viper"

// Default values for the service surface.
const (
	DefaultHost  = "localhost"
	DefaultPort  = 18790
	DefaultLevel = "info"
)

func applyDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLevel)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("storage.path", "")
}

// Default returns the configuration written by `ctxpipe init`: a keep-last
// history limiter, an exact token limiter, and the secret-key redactor, in
// that order.
func Default() *Config {
	maxTokens := 32000
	perMessage := 8000
	return &Config{
		Log:     LogConfig{Level: DefaultLevel},
		Server:  ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Storage: StorageConfig{Path: "~/.ctxpipe/reports.db"},
		Pipeline: []StageConfig{
			{
				Type:        "history_limiter",
				MaxMessages: 100,
			},
			{
				Type:                "token_limiter",
				Model:               "gpt-4o",
				MaxTokens:           &maxTokens,
				MaxTokensPerMessage: &perMessage,
				MinTokens:           1024,
			},
			{
				Type: "redact",
			},
		},
	}
}
