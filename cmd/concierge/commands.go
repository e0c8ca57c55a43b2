package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"ConciergeChat/internal/chatbot"
	"ConciergeChat/internal/config"
	"ConciergeChat/internal/i18n"
	"ConciergeChat/internal/qr"
	"ConciergeChat/internal/session"
)

// sessionsAPI is the chat-session surface of the API client
type sessionsAPI interface {
	ListSessions(ctx context.Context) ([]session.ChatSession, error)
	CreateSession(ctx context.Context, name string) (session.ChatSession, error)
	DeleteSession(ctx context.Context, id int64) error
}

func runCommand(ctx context.Context, out io.Writer, api sessionsAPI, prefs *chatbot.Preferences, cfg config.Config, args []string) error {
	switch args[0] {
	case "sessions":
		return runSessions(ctx, out, api, prefs, args[1:])
	case "qr":
		return runQR(out, cfg, args[1:])
	default:
		return fmt.Errorf("unknown command %q (try -h)", args[0])
	}
}

func runSessions(ctx context.Context, out io.Writer, api sessionsAPI, prefs *chatbot.Preferences, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list", "ls":
		sessions, err := api.ListSessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list chat sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No chat sessions.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "ID\t%s\n", strings.ToUpper(prefs.T(i18n.ChatName)))
		for _, s := range sessions {
			fmt.Fprintf(tw, "%d\t%s\n", s.ID, s.DisplayName(prefs.T(i18n.DefaultChatName)))
		}
		return tw.Flush()

	case "create", "new":
		name := strings.TrimSpace(strings.Join(args[1:], " "))
		created, err := api.CreateSession(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to create chat session: %w", err)
		}
		fmt.Fprintf(out, "%s: %d %s\n", prefs.T(i18n.NewChat), created.ID, created.DisplayName(prefs.T(i18n.DefaultChatName)))
		return nil

	case "delete", "rm":
		if len(args) < 2 {
			return fmt.Errorf("usage: sessions delete <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat session id %q", args[1])
		}
		if err := api.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("failed to delete chat session %d: %w", id, err)
		}
		fmt.Fprintf(out, "%s: %d\n", prefs.T(i18n.DeleteChat), id)
		return nil

	default:
		return fmt.Errorf("unknown sessions command %q (list|create|delete)", args[0])
	}
}

func runQR(out io.Writer, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("qr", flag.ContinueOnError)
	fs.SetOutput(out)
	output := fs.String("o", "", "Write a PNG image to this file instead of printing")
	size := fs.Int("size", qr.DefaultPNGSize, "PNG edge length in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target := cfg.QRTarget()
	if *output != "" {
		if err := qr.WritePNG(target, *output, *size); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote QR code for %s to %s\n", target, *output)
		return nil
	}

	code, err := qr.Render(target)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, code)
	fmt.Fprintln(out, target)
	return nil
}
