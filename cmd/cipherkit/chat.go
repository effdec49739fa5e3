package main

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"cipherkit/internal/dispatch"
	"cipherkit/internal/storage"
)

var chatHTML bool

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Answer chat commands such as /encrypt caesar 5 hello",
	Long: `Answer chat-style commands the way the bot front end does.

With arguments, answers that one message. Otherwise reads one message
per line from standard input until EOF.

Examples:
  cipherkit chat /help
  cipherkit chat "/encrypt mixed_alphabet mykey secret text"
  printf '/cipher atbash hi\n/hash hi\n' | cipherkit chat`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatHTML, "html", false, "Print replies as HTML instead of plain text")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	d := newDispatcher(storage.SourceChat)
	out := cmd.OutOrStdout()

	if len(args) > 0 {
		_, err := fmt.Fprintln(out, renderReply(d.Handle(newContext(), strings.Join(args, " ")), chatHTML))
		return err
	}

	in := cmd.InOrStdin()
	interactive := false
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		interactive = true
		fmt.Fprintln(cmd.ErrOrStderr(), "Type /help for commands, Ctrl+D to quit.")
	}
	return chatLoop(d, in, out, interactive)
}

func chatLoop(d *dispatch.Dispatcher, in io.Reader, out io.Writer, interactive bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fmt.Fprintln(out, renderReply(d.Handle(newContext(), line), chatHTML))
		if !interactive {
			continue
		}
		fmt.Fprintln(out)
	}
	return scanner.Err()
}

var htmlTag = regexp.MustCompile(`</?[a-z]+>`)

// renderReply strips the reply's markup for terminals.
func renderReply(reply string, keepHTML bool) string {
	if keepHTML {
		return reply
	}
	return html.UnescapeString(htmlTag.ReplaceAllString(reply, ""))
}
