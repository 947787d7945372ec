package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/client"
	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/prompt"
	"github.com/xiaot623/gogo/vizstudio/internal/service"
)

var chatOutDir string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the prompt assistant of a running studio",
	Long: `Chat streams assistant replies from a running studio server. When a reply
contains a prompt block, "/generate" renders it.

Commands:
  /generate [prompt]  render the last extracted prompt, or the given one
  /clear              start a new conversation
  /quit               exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := resolveAPIKey()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Connecting to %s (session %s)...\n", serverURL, sessionID)
		r := &repl{
			client: newStudioClient(),
			apiKey: key,
			outDir: chatOutDir,
			out:    cmd.OutOrStdout(),
		}
		return r.run(ctx, cmd.InOrStdin())
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatOutDir, "out", ".", "directory for generated images")
}

// repl is the interactive chat loop. The conversation is the server-side
// studio state, so a browser and the terminal can share a session.
type repl struct {
	client *client.Client
	apiKey string
	outDir string
	out    io.Writer

	state      *domain.StudioState
	lastPrompt string
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	state, err := r.client.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	r.state = state
	r.greet()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			fmt.Fprintln(r.out, "\nInterrupted")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "/quit":
			fmt.Fprintln(r.out, "Bye!")
			return nil
		case input == "/clear":
			r.state = service.NewStudioState()
			r.lastPrompt = ""
			r.save(ctx)
			r.greet()
		case input == "/generate" || strings.HasPrefix(input, "/generate "):
			r.generate(ctx, strings.TrimSpace(strings.TrimPrefix(input, "/generate")))
		default:
			r.send(ctx, input)
		}
	}
}

func (r *repl) greet() {
	if n := len(r.state.Messages); n > 0 {
		fmt.Fprintf(r.out, "\n%s\n\n", r.state.Messages[n-1].Content)
	}
}

func (r *repl) send(ctx context.Context, input string) {
	conv := domain.Conversation{Messages: r.state.Messages}
	conv.Append(domain.Message{Role: domain.RoleUser, Content: input})

	events, err := r.client.Chat(ctx, service.ChatInput{
		Messages: conv.Messages,
		APIKey:   r.apiKey,
	})
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}

	for ev := range events {
		switch ev.Kind {
		case domain.StreamEventText:
			conv.AppendDelta(ev.Text)
			fmt.Fprint(r.out, ev.Text)
		case domain.StreamEventError:
			conv.AppendDelta("\n\nError: " + ev.Error)
			fmt.Fprintf(r.out, "\nError: %s", ev.Error)
		}
	}
	fmt.Fprintln(r.out)

	r.state.Messages = conv.Messages
	if last, ok := conv.Last(); ok && last.Role == domain.RoleAssistant {
		if p, found := prompt.ExtractPrompt(last.Content); found {
			r.lastPrompt = p
			fmt.Fprintln(r.out, "\nPrompt ready. Type /generate to render it.")
		}
	}
	r.save(ctx)
}

func (r *repl) generate(ctx context.Context, text string) {
	if text == "" {
		text = r.lastPrompt
	}
	if text == "" {
		fmt.Fprintln(r.out, "No prompt yet. Chat until the assistant proposes one, or use /generate <prompt>.")
		return
	}

	fmt.Fprintln(r.out, "Generating...")
	res, err := r.client.Generate(ctx, service.GenerateInput{Prompt: text, APIKey: r.apiKey})
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	path, err := writeImage(res.Image, r.outDir, res.ID)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	if res.Text != "" {
		fmt.Fprintln(r.out, res.Text)
	}
	fmt.Fprintf(r.out, "Saved %s\n", path)

	r.state.PushHistory(res.Image)
	r.save(ctx)
}

func (r *repl) save(ctx context.Context) {
	r.state.APIKey = r.apiKey
	if err := r.client.SaveState(ctx, r.state); err != nil {
		logger.Warn("failed to save studio state", zap.Error(err))
	}
}
