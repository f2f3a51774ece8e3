package router

import (
	"fmt"
	"strings"

	"github.com/lumist/relaymorph/telegram"
)

// DefaultSystemPrompt is the persona the bot originally shipped with.
const DefaultSystemPrompt = "你是一个风格独特的 AI 助手，说话有点拽，风趣但不低俗，" +
	"中文为主，偶尔夹杂英文。你擅长用文艺、哲理、调皮的语言回答问题，" +
	"不走寻常路，拒绝废话，回答要简洁有力，偶尔带点诗意或黑色幽默。" +
	"别太端着，也别太舔。"

// aiErrorPrefix is a stable marker so callers (and tests) can recognize a
// provider failure reply.
const aiErrorPrefix = "⚠️ ai error: "

const (
	forwardAck           = "✅ Your message has been forwarded to the operators."
	deliveryFailedNotice = "⚠️ Could not deliver your reply: the user has blocked or removed the bot."
)

func authPrompt(secretConfigured bool) string {
	if secretConfigured {
		return "🔒 Chat is restricted. Send /auth <secret> to unlock it."
	}
	return "🔒 Chat is restricted to the bot owners."
}

func handleLine(u *telegram.User) string {
	if u == nil || strings.TrimSpace(u.Username) == "" {
		return "👤 From: (no username)"
	}
	return "👤 From: @" + u.Username
}

// forwardHeader formats the message sent to each forward destination:
// display name, handle or placeholder, numeric id, and the body.
func forwardHeader(msg *telegram.Message) string {
	lines := []string{"📬 Private DM"}
	if name := msg.From.DisplayName(); name != "" {
		lines = append(lines, "📛 Name: "+name)
	}
	lines = append(lines,
		handleLine(msg.From),
		fmt.Sprintf("🆔 User ID: %d", msg.From.ID),
	)
	return strings.Join(lines, "\n") + "\n\n💬 Message:\n" + msg.BodyText()
}

func groupAlertHeader(msg *telegram.Message) string {
	return strings.Join([]string{
		"📩 Group Trigger",
		handleLine(msg.From),
		fmt.Sprintf("🆔 User ID: %d", msg.From.ID),
	}, "\n")
}

func splitCommand(text string) (cmd string, rest string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	i := strings.IndexAny(text, " \n\t")
	if i == -1 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}

func normalizeSlashCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" || !strings.HasPrefix(cmd, "/") {
		return ""
	}
	// Allow "/cmd@BotName" variants by stripping "@...".
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}
