package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lumist/relaymorph/auth"
	"github.com/lumist/relaymorph/session"
	"github.com/lumist/relaymorph/telegram"
)

// handleCommand serves the getter/setter commands over the session store and
// the authorization gate. Unknown slash commands are dropped.
func (r *Router) handleCommand(ctx context.Context, log *slog.Logger, msg *telegram.Message, cmd, args string) {
	chatID := msg.Chat.ID

	reply := func(text string) {
		if _, err := r.tg.SendMessage(ctx, chatID, text, telegram.SendOptions{DisablePreview: true}); err != nil {
			log.Warn("command_reply_error", "command", cmd, "error", err.Error())
		}
	}

	switch cmd {
	case "/start", "/forward":
		r.sessions.SetMode(chatID, session.ModeForward)
		reply(strings.Join([]string{
			"🔔 Switched to forward-only mode.",
			"📌 Private messages are relayed to the operators without calling the AI.",
			"📦 Current model: " + r.sessions.Model(chatID),
		}, "\n"))

	case "/chat":
		r.sessions.SetMode(chatID, session.ModeChat)
		reply(strings.Join([]string{
			"💬 Switched to chat mode.",
			"📌 Private messages are answered by the AI.",
			"📦 Current model: " + r.sessions.Model(chatID),
		}, "\n"))

	case "/model":
		if strings.TrimSpace(args) == "" {
			text := "ℹ️ Current model: " + r.sessions.Model(chatID)
			if allowed := r.sessions.AllowedModels(); len(allowed) > 0 {
				text += "\nAllowed: " + strings.Join(allowed, ", ")
			}
			reply(text)
			return
		}
		model := strings.Fields(args)[0]
		if err := r.sessions.SetModel(chatID, model); err != nil {
			reply("❌ " + err.Error())
			return
		}
		log.Info("model_changed", "model", model)
		reply("✅ Model switched to: " + model)

	case "/auth":
		secret := strings.TrimSpace(args)
		if secret == "" && !r.gate.IsOwner(msg.From.ID) {
			reply("usage: /auth <secret>")
			return
		}
		switch err := r.gate.Authorize(msg.From.ID, secret); {
		case err == nil:
			log.Info("authorized", "sender_id", msg.From.ID)
			reply("✅ You are authorized to chat.")
		case errors.Is(err, auth.ErrNoSecretConfigured):
			reply("❌ No secret is configured; chat is restricted to the bot owners.")
		case errors.Is(err, auth.ErrWrongSecret):
			log.Warn("auth_wrong_secret", "sender_id", msg.From.ID)
			reply("❌ Wrong secret.")
		default:
			reply("❌ " + err.Error())
		}

	case "/status":
		authorized := "no"
		if r.gate.IsAuthorized(msg.From.ID) {
			authorized = "yes"
		}
		reply(strings.Join([]string{
			"📊 Mode: " + r.sessions.Mode(chatID).String(),
			"📦 Model: " + r.sessions.Model(chatID),
			"🔑 Authorized: " + authorized,
		}, "\n"))

	case "/ping":
		reply("✅ I'm alive")

	default:
		log.Debug("unknown_command", "command", cmd)
	}
}
