// Package router classifies each inbound Telegram message into its terminal
// action: reply-bridge delivery, forwarding to the configured destinations,
// an AI chat reply, a group keyword alert, or nothing.
package router

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lumist/relaymorph/auth"
	"github.com/lumist/relaymorph/bridge"
	"github.com/lumist/relaymorph/llm"
	"github.com/lumist/relaymorph/session"
	"github.com/lumist/relaymorph/telegram"
	"github.com/lumist/relaymorph/watch"
)

// Transport is the slice of the Telegram client the router needs.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts telegram.SendOptions) (int64, error)
	SendMessageChunked(ctx context.Context, chatID int64, text string) error
	CopyMessage(ctx context.Context, toChatID, fromChatID, messageID int64) (int64, error)
}

type Config struct {
	// ForwardTargets receive headers for private messages from non-owners.
	// Immutable after startup.
	ForwardTargets []int64
	// AlertChatID receives group keyword alerts (typically the first owner).
	AlertChatID    int64
	SystemPrompt   string
	MaxConcurrency int
	TaskTimeout    time.Duration
}

type Router struct {
	cfg      Config
	log      *slog.Logger
	sessions *session.Store
	gate     *auth.Gate
	bridge   *bridge.Bridge
	monitor  *watch.Monitor // nil disables group keyword monitoring
	tg       Transport
	ai       llm.Client

	mu      sync.Mutex
	workers map[int64]*chatWorker
	sem     chan struct{}
}

type chatWorker struct {
	jobs chan *telegram.Message
}

func New(cfg Config, log *slog.Logger, sessions *session.Store, gate *auth.Gate, br *bridge.Bridge, monitor *watch.Monitor, tg Transport, ai llm.Client) *Router {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 3
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 2 * time.Minute
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		gate:     gate,
		bridge:   br,
		monitor:  monitor,
		tg:       tg,
		ai:       ai,
		workers:  make(map[int64]*chatWorker),
		sem:      make(chan struct{}, cfg.MaxConcurrency),
	}
}

// Dispatch enqueues a message onto its chat's worker. Messages from one chat
// are processed in arrival order; distinct chats proceed in parallel up to
// the global concurrency cap.
func (r *Router) Dispatch(msg *telegram.Message) {
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return
	}
	r.mu.Lock()
	w := r.workerLocked(msg.Chat.ID)
	r.mu.Unlock()
	w.jobs <- msg
}

func (r *Router) workerLocked(chatID int64) *chatWorker {
	if w, ok := r.workers[chatID]; ok {
		return w
	}
	w := &chatWorker{jobs: make(chan *telegram.Message, 16)}
	r.workers[chatID] = w

	go func() {
		for msg := range w.jobs {
			r.sem <- struct{}{}
			func() {
				defer func() { <-r.sem }()
				ctx, cancel := context.WithTimeout(context.Background(), r.cfg.TaskTimeout)
				defer cancel()
				r.Process(ctx, msg)
			}()
		}
	}()
	return w
}

// Process runs the per-message state machine. Exported for direct use in
// tests; production traffic goes through Dispatch.
func (r *Router) Process(ctx context.Context, msg *telegram.Message) {
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return
	}
	log := r.log.With("trace_id", uuid.NewString(), "chat_id", msg.Chat.ID)

	// Step 1: a reply targeting a tracked forward header goes back to the
	// original sender, regardless of chat type, mode, or authorization —
	// even when its text happens to start with a slash.
	if msg.ReplyTo != nil {
		if sender, ok := r.bridge.Resolve(msg.Chat.ID, msg.ReplyTo.MessageID); ok {
			r.deliverBridgeReply(ctx, log, msg, sender)
			return
		}
	}

	if cmd, args := splitCommand(msg.Text); strings.HasPrefix(cmd, "/") {
		r.handleCommand(ctx, log, msg, normalizeSlashCommand(cmd), args)
		return
	}

	private := msg.Chat.IsPrivate()

	// Step 2: private messages from non-owners are forwarded whatever the
	// mode is.
	if private && !r.gate.IsOwner(msg.From.ID) && len(r.cfg.ForwardTargets) > 0 {
		r.forward(ctx, log, msg)
	}

	// Step 3: AI chat.
	if private && r.sessions.Mode(msg.Chat.ID) == session.ModeChat {
		r.chat(ctx, log, msg)
		return
	}

	// Step 4: group keyword monitoring, when enabled.
	if !private && r.monitor != nil {
		r.watchGroup(ctx, log, msg)
	}
}

func (r *Router) deliverBridgeReply(ctx context.Context, log *slog.Logger, msg *telegram.Message, senderID int64) {
	var err error
	if msg.IsText() {
		_, err = r.tg.SendMessage(ctx, senderID, msg.Text, telegram.SendOptions{DisablePreview: true})
	} else {
		_, err = r.tg.CopyMessage(ctx, senderID, msg.Chat.ID, msg.MessageID)
	}
	if err == nil {
		log.Info("bridge_delivered", "sender_id", senderID)
		return
	}
	if telegram.IsForbidden(err) {
		log.Warn("bridge_delivery_forbidden", "sender_id", senderID, "error", err.Error())
		_, _ = r.tg.SendMessage(ctx, msg.Chat.ID, deliveryFailedNotice, telegram.SendOptions{ReplyTo: msg.MessageID})
		return
	}
	log.Warn("bridge_delivery_error", "sender_id", senderID, "error", err.Error())
}

func (r *Router) forward(ctx context.Context, log *slog.Logger, msg *telegram.Message) {
	header := forwardHeader(msg)

	var delivered atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, dest := range r.cfg.ForwardTargets {
		if dest == msg.Chat.ID {
			continue
		}
		dest := dest
		g.Go(func() error {
			// Destinations are independent; a failure here never aborts
			// the others.
			headerID, err := r.tg.SendMessage(gctx, dest, header, telegram.SendOptions{DisablePreview: true})
			if err != nil {
				log.Warn("forward_send_error", "dest", dest, "error", err.Error())
				return nil
			}
			r.bridge.Record(dest, headerID, msg.From.ID)
			delivered.Add(1)
			if !msg.IsText() {
				if _, err := r.tg.CopyMessage(gctx, dest, msg.Chat.ID, msg.MessageID); err != nil {
					log.Warn("forward_copy_error", "dest", dest, "error", err.Error())
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("forwarded", "delivered", delivered.Load(), "targets", len(r.cfg.ForwardTargets))

	// In forward mode the acknowledgement is the sender's only feedback; in
	// chat mode the AI reply plays that role.
	if delivered.Load() > 0 && r.sessions.Mode(msg.Chat.ID) == session.ModeForward {
		_, _ = r.tg.SendMessage(ctx, msg.Chat.ID, forwardAck, telegram.SendOptions{DisablePreview: true})
	}
}

func (r *Router) chat(ctx context.Context, log *slog.Logger, msg *telegram.Message) {
	if !r.gate.IsAuthorized(msg.From.ID) {
		log.Info("chat_unauthorized", "sender_id", msg.From.ID)
		_, _ = r.tg.SendMessage(ctx, msg.Chat.ID, authPrompt(r.gate.SecretConfigured()), telegram.SendOptions{DisablePreview: true})
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	model := r.sessions.Model(msg.Chat.ID)
	res, err := r.ai.Chat(ctx, llm.Request{
		Model: model,
		Messages: []llm.Message{
			{Role: "system", Content: r.cfg.SystemPrompt},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		log.Warn("chat_provider_error", "model", model, "error", err.Error())
		_, _ = r.tg.SendMessage(ctx, msg.Chat.ID, aiErrorPrefix+err.Error(), telegram.SendOptions{DisablePreview: true})
		return
	}
	log.Info("chat_replied", "model", model, "tokens", res.Usage.TotalTokens)
	// Completion replies routinely exceed Telegram's message limit.
	if err := r.tg.SendMessageChunked(ctx, msg.Chat.ID, res.Text); err != nil {
		log.Warn("chat_send_error", "error", err.Error())
	}
}

func (r *Router) watchGroup(ctx context.Context, log *slog.Logger, msg *telegram.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" || !r.monitor.Match(text) {
		return
	}
	retained := r.monitor.Note(msg.From.ID, text)

	// Summary failure degrades the alert rather than suppressing it.
	summary := ""
	res, err := r.ai.Chat(ctx, llm.Request{
		Model: r.sessions.Model(msg.Chat.ID),
		Messages: []llm.Message{
			{Role: "system", Content: r.cfg.SystemPrompt},
			{Role: "user", Content: watch.SummaryPrompt(retained)},
		},
	})
	if err != nil {
		log.Warn("watch_summary_error", "error", err.Error())
	} else {
		summary = res.Text
	}

	alert := watch.AlertText(groupAlertHeader(msg), retained, summary)
	if _, err := r.tg.SendMessage(ctx, r.cfg.AlertChatID, alert, telegram.SendOptions{DisablePreview: true}); err != nil {
		log.Warn("watch_alert_error", "error", err.Error())
		return
	}
	log.Info("watch_alerted", "sender_id", msg.From.ID, "retained", len(retained))
	_, _ = r.tg.SendMessage(ctx, msg.Chat.ID, watch.NotifyText(msg.From.Username), telegram.SendOptions{ReplyTo: msg.MessageID})
}
