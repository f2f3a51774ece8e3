package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// Telegram transport
	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.task_timeout", 2*time.Minute)
	viper.SetDefault("telegram.max_concurrency", 3)
	viper.SetDefault("telegram.send_rate", 25.0)

	// AI provider
	viper.SetDefault("openai.endpoint", "https://api.openai.com")
	viper.SetDefault("openai.api_key", "")

	// Models
	viper.SetDefault("model.default", "gpt-5-mini")
	viper.SetDefault("model.validation", "none")
	viper.SetDefault("model.allowed", []string{"gpt-5-mini", "gpt-5", "gpt-5-pro"})

	// Routing
	viper.SetDefault("forward.targets", []string{})
	viper.SetDefault("owners", []string{})
	viper.SetDefault("auth.secret", "")
	viper.SetDefault("bridge.max_entries", 4096)
	viper.SetDefault("chat.system_prompt", "")

	// Group keyword monitoring
	viper.SetDefault("watch.enabled", false)
	viper.SetDefault("watch.keywords", []string{})
	viper.SetDefault("watch.keywords_file", "")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.file", "")
	viper.SetDefault("logging.add_source", false)
}
