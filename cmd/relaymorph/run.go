package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumist/relaymorph/auth"
	"github.com/lumist/relaymorph/bridge"
	"github.com/lumist/relaymorph/internal/logutil"
	"github.com/lumist/relaymorph/providers/openai"
	"github.com/lumist/relaymorph/router"
	"github.com/lumist/relaymorph/session"
	"github.com/lumist/relaymorph/telegram"
	"github.com/lumist/relaymorph/watch"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the relay bot (long polling)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(flagOrViperString(cmd, "bot-token", "telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram.bot_token (set via --bot-token or %s_TELEGRAM_BOT_TOKEN)", envPrefix)
			}
			apiKey := strings.TrimSpace(flagOrViperString(cmd, "api-key", "openai.api_key"))
			if apiKey == "" {
				return fmt.Errorf("missing openai.api_key (set via --api-key or %s_OPENAI_API_KEY)", envPrefix)
			}

			owners, err := parseChatIDs("owners", flagOrViperStringArray(cmd, "owner", "owners"))
			if err != nil {
				return err
			}
			if len(owners) == 0 {
				return fmt.Errorf("missing owners (set via --owner or %s_OWNERS)", envPrefix)
			}
			targets, err := parseChatIDs("forward.targets", flagOrViperStringArray(cmd, "forward-target", "forward.targets"))
			if err != nil {
				return err
			}

			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			sessions := session.NewStore(strings.TrimSpace(flagOrViperString(cmd, "model", "model.default")))
			switch v := strings.ToLower(strings.TrimSpace(flagOrViperString(cmd, "model-validation", "model.validation"))); v {
			case "", "none":
			case "allowlist":
				sessions.RestrictModels(flagOrViperStringArray(cmd, "allowed-model", "model.allowed"))
			default:
				return fmt.Errorf("unknown model.validation: %s (want none|allowlist)", v)
			}

			gate := auth.NewGate(owners, strings.TrimSpace(flagOrViperString(cmd, "auth-secret", "auth.secret")))
			br := bridge.New(flagOrViperInt(cmd, "bridge-max-entries", "bridge.max_entries"))

			var monitor *watch.Monitor
			if flagOrViperBool(cmd, "watch", "watch.enabled") {
				keywords := flagOrViperStringArray(cmd, "watch-keyword", "watch.keywords")
				if f := strings.TrimSpace(flagOrViperString(cmd, "watch-keywords-file", "watch.keywords_file")); f != "" {
					keywords, err = watch.LoadKeywordsFile(f)
					if err != nil {
						return err
					}
				}
				monitor = watch.NewMonitor(keywords)
			}

			tg := telegram.NewClient(
				strings.TrimSpace(flagOrViperString(cmd, "base-url", "telegram.base_url")),
				token,
				telegram.WithSendRate(flagOrViperFloat64(cmd, "send-rate", "telegram.send_rate")),
			)
			ai := openai.New(strings.TrimSpace(flagOrViperString(cmd, "endpoint", "openai.endpoint")), apiKey)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			me, err := tg.GetMe(ctx)
			if err != nil {
				return fmt.Errorf("telegram getMe: %w", err)
			}

			rt := router.New(router.Config{
				ForwardTargets: targets,
				AlertChatID:    owners[0],
				SystemPrompt:   flagOrViperString(cmd, "system-prompt", "chat.system_prompt"),
				MaxConcurrency: flagOrViperInt(cmd, "max-concurrency", "telegram.max_concurrency"),
				TaskTimeout:    flagOrViperDuration(cmd, "task-timeout", "telegram.task_timeout"),
			}, logger, sessions, gate, br, monitor, tg, ai)

			pollTimeout := flagOrViperDuration(cmd, "poll-timeout", "telegram.poll_timeout")

			logger.Info("relaymorph_start",
				"bot_username", me.Username,
				"bot_id", me.ID,
				"owners", len(owners),
				"forward_targets", len(targets),
				"watch_enabled", monitor != nil,
				"default_model", sessions.DefaultModel(),
				"poll_timeout", pollTimeout.String(),
			)

			var offset int64
			for {
				updates, nextOffset, err := tg.GetUpdates(ctx, offset, pollTimeout)
				if err != nil {
					if errors.Is(err, context.Canceled) || ctx.Err() != nil {
						logger.Info("relaymorph_stop")
						return nil
					}
					logger.Warn("get_updates_error", "error", err.Error())
					time.Sleep(1 * time.Second)
					continue
				}
				offset = nextOffset

				for _, u := range updates {
					msg := u.Message
					if msg == nil {
						msg = u.EditedMessage
					}
					if msg == nil || msg.Chat == nil || msg.From == nil || msg.From.IsBot {
						continue
					}
					rt.Dispatch(msg)
				}
			}
		},
	}

	cmd.Flags().String("bot-token", "", "Telegram bot token.")
	cmd.Flags().String("base-url", "https://api.telegram.org", "Telegram API base URL.")
	cmd.Flags().String("api-key", "", "OpenAI API key.")
	cmd.Flags().String("endpoint", "https://api.openai.com", "OpenAI-compatible endpoint.")
	cmd.Flags().String("model", "gpt-5-mini", "Default AI model.")
	cmd.Flags().String("model-validation", "none", "Model name policy: none|allowlist.")
	cmd.Flags().StringArray("allowed-model", nil, "Allowed model names (with --model-validation=allowlist).")
	cmd.Flags().String("system-prompt", "", "System instruction for AI chat (empty uses the built-in one).")
	cmd.Flags().StringArray("owner", nil, "Owner user id(s); always authorized, never forwarded.")
	cmd.Flags().StringArray("forward-target", nil, "Chat id(s) receiving forwarded private messages.")
	cmd.Flags().String("auth-secret", "", "Shared secret for /auth (empty restricts chat to owners).")
	cmd.Flags().Int("bridge-max-entries", 4096, "Reply-bridge capacity; oldest entries are evicted (0 = unbounded).")
	cmd.Flags().Bool("watch", false, "Enable group keyword monitoring.")
	cmd.Flags().StringArray("watch-keyword", nil, "Keyword(s) for group monitoring (empty uses the built-in list).")
	cmd.Flags().String("watch-keywords-file", "", "YAML file with a keywords list (overrides --watch-keyword).")
	cmd.Flags().Duration("poll-timeout", 30*time.Second, "Long polling timeout for getUpdates.")
	cmd.Flags().Duration("task-timeout", 2*time.Minute, "Per-message handling timeout.")
	cmd.Flags().Int("max-concurrency", 3, "Max number of chats processed concurrently.")
	cmd.Flags().Float64("send-rate", 25, "Outbound sends per second.")

	return cmd
}
