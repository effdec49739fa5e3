package dispatch

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"cipherkit/internal/errors"
	"cipherkit/internal/hashing"
)

const startText = "<b>Bot started successfully!</b>\nSend /help to get help"

const notCommandText = "Send /help to see the available commands."

// Handle answers one chat message with an HTML reply. It never fails:
// errors become "❌" replies.
func (d *Dispatcher) Handle(ctx context.Context, message string) string {
	cmd, err := ParseCommand(message)
	if err != nil {
		return notCommandText
	}

	switch cmd.Name {
	case "help":
		return d.HelpText()
	case "start":
		return startText
	case "hash":
		return hashReply(cmd.Text(0))
	}

	if !IsCipherCommand(cmd.Name) {
		return fmt.Sprintf("❌ Unknown command /%s\n%s", escape(cmd.Name), notCommandText)
	}

	req, err := RequestFromCommand(d.registry, cmd)
	if err != nil {
		return d.errorReply(cmd.Name, err)
	}

	res, err := d.Execute(ctx, req)
	if err != nil {
		return d.errorReply(cmd.Name, err)
	}
	return resultReply(cmd.Name, res)
}

func resultReply(op string, res *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔐 <b>Algorithm:</b> %s\n", strings.ToUpper(res.Algorithm))
	fmt.Fprintf(&b, "<b>Operation:</b> %s\n", strings.ToUpper(op))
	if res.Param != "" {
		fmt.Fprintf(&b, "<b>Key:</b> <code>%s</code>\n", escape(res.Param))
	}
	if res.Alphabet != "" {
		fmt.Fprintf(&b, "<b>Alphabet:</b> <code>%s</code>\n", res.Alphabet)
	}
	fmt.Fprintf(&b, "<b>Input:</b> <code>%s</code>\n", escape(res.Input))
	fmt.Fprintf(&b, "<b>Output:</b> <code>%s</code>", escape(res.Output))
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "\n⚠️ %s", escape(w))
	}
	return b.String()
}

func (d *Dispatcher) errorReply(op string, err error) string {
	var ce *errors.CipherError
	if !stderrors.As(err, &ce) {
		return fmt.Sprintf("❌ Error during %s: %s", op, escape(err.Error()))
	}

	switch ce.Code {
	case errors.UnsupportedAlgorithm:
		return fmt.Sprintf("❌ %s\nAvailable: %s",
			escape(capitalize(ce.Message)), strings.Join(d.registry.Names(), ", "))
	case errors.MissingParameter:
		msg := "❌ " + escape(capitalize(ce.Message)) + "!"
		if details, ok := ce.Details.(map[string]interface{}); ok {
			if usage, ok := details["usage"].(string); ok {
				msg += "\nUsage: " + escape(usage)
			}
		}
		return msg
	case errors.EmptyInput:
		return "❌ Please provide text to process!"
	case errors.InvalidOperation:
		return "❌ " + escape(capitalize(ce.Message))
	default:
		detail := ce.Message
		if cause := ce.Unwrap(); cause != nil {
			detail = cause.Error()
		}
		return fmt.Sprintf("❌ Error during %s: %s", op, escape(detail))
	}
}

func hashReply(text string) string {
	if text == "" {
		return "❌ Please provide text to hash!\nExample: /hash example"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔐 <b>Hash results for:</b> <code>%s</code>\n", escape(text))
	for _, d := range hashing.StringDigests(text) {
		fmt.Fprintf(&b, "\n<b>%s</b>: <code>%s</code>", strings.ToUpper(d.Algorithm), d.Hex)
	}
	return b.String()
}

// HelpText lists the commands and every registered algorithm.
func (d *Dispatcher) HelpText() string {
	var b strings.Builder
	b.WriteString("🤖 <b>Available Commands</b>\n\n")

	b.WriteString("<b>🔐 HASH</b>\n")
	fmt.Fprintf(&b, "• <code>/hash &lt;text&gt;</code> - %d digests of the text\n\n", len(hashing.Algorithms))

	b.WriteString("<b>🔒 CIPHER</b>\n")
	b.WriteString("• <code>/cipher &lt;algorithm&gt; [param] &lt;text&gt;</code> - Encrypt text (alias /encrypt)\n")
	b.WriteString("• <code>/decipher &lt;algorithm&gt; [param] &lt;text&gt;</code> - Decrypt text (alias /decrypt)\n\n")

	b.WriteString("<b>📋 ALGORITHMS</b>\n")
	for _, a := range d.registry.All() {
		fmt.Fprintf(&b, "• <code>%s</code> - %s", escape(a.Usage()), escape(a.Description))
		if a.ParamHelp != "" {
			fmt.Fprintf(&b, " (%s)", escape(a.ParamHelp))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\n<b>💡 EXAMPLES</b>\n")
	b.WriteString("<code>/cipher atbash hello world</code>\n")
	b.WriteString("<code>/encrypt mixed_alphabet mykey secret text</code>\n")
	b.WriteString("<code>/encrypt caesar 5 hello</code>\n")
	b.WriteString("<code>/decrypt rail_fence 3 WECRLTEERDSOEEFEAOCAIVDEN</code>\n\n")

	b.WriteString("<b>ℹ️ OTHER</b>\n")
	b.WriteString("• <code>/start</code> - Start the bot\n")
	b.WriteString("• <code>/help</code> - Show this help message")
	return b.String()
}

// escaper covers the characters the chat HTML parse mode reserves.
var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return escaper.Replace(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
