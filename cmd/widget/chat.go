package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"Zelvix/models"
	"Zelvix/pkg/widget"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session.

Commands inside the session:
  /upload <path>   send a file and show its preview
  /change-name     pick a new display name
  /quit            leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		relayURL, _ := cmd.Flags().GetString("relay")
		nameFile, _ := cmd.Flags().GetString("name-file")

		var store widget.Store
		if nameFile != "" {
			store = widget.NewFileStore(nameFile)
		} else {
			fs, err := widget.DefaultFileStore()
			if err != nil {
				return fmt.Errorf("locating config dir: %w", err)
			}
			store = fs
		}

		ctx := cmd.Context()
		client := widget.NewClient(relayURL, nil)
		cfg, err := client.FetchConfig(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Zelvix - Chat with %s\n", cfg.BotName)
		for _, b := range cfg.Buttons {
			fmt.Fprintf(out, "  [%s] %s\n", b.Label, b.URL)
		}

		sess := widget.NewSession(cfg, store, client, widget.WithObserver(printer(out, cfg.BotName)))
		return runChat(ctx, cmd.InOrStdin(), out, sess)
	},
}

func init() {
	chatCmd.Flags().String("name-file", "", "where to keep the display name (default: user config dir)")
}

func printer(out io.Writer, botName string) func(models.ChatMessage) {
	if botName == "" {
		botName = "bot"
	}
	return func(m models.ChatMessage) {
		who := "you"
		if m.Sender == models.SenderBot {
			who = botName
		}
		fmt.Fprintf(out, "[%s %s] %s\n", m.Time.Format("15:04"), who, m.Text)
		if m.FileURL != "" {
			fmt.Fprintf(out, "    View Uploaded File: %s\n", m.FileURL)
		}
	}
}

// runChat reads one command or message per line until /quit or EOF.
func runChat(ctx context.Context, in io.Reader, out io.Writer, sess *widget.Session) error {
	sess.Open()
	defer sess.Close()

	sc := bufio.NewScanner(in)
	for {
		if sess.State() == widget.OpenAwaitingName {
			fmt.Fprint(out, "name> ")
		} else {
			fmt.Fprint(out, "> ")
		}
		if !sc.Scan() {
			return sc.Err()
		}
		line := sc.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "/quit":
			return nil
		case strings.HasPrefix(trimmed, "/upload "):
			path := strings.TrimSpace(strings.TrimPrefix(trimmed, "/upload "))
			if err := uploadFile(ctx, sess, path); err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
		case sess.State() == widget.OpenAwaitingName && !strings.EqualFold(trimmed, widget.ChangeNameCommand):
			err := sess.SubmitName(ctx, line)
			var verr *widget.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(out, "! %s\n", verr.Message)
			} else if err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
		default:
			if err := sess.Send(ctx, line); err != nil && !errors.Is(err, widget.ErrAwaitingName) {
				fmt.Fprintf(out, "! %v\n", err)
			}
		}
	}
}

func uploadFile(ctx context.Context, sess *widget.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return sess.Upload(ctx, filepath.Base(path), f)
}
