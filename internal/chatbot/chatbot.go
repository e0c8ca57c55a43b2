// Package chatbot orchestrates the concierge conversation independently of any view.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"ConciergeChat/internal/cache"
	"ConciergeChat/internal/i18n"
	"ConciergeChat/internal/session"
)

// MessagesQueryKey identifies the message-list query in the cache.
const MessagesQueryKey = "/api/messages"

// Gateway is the subset of the API client the conversation needs
type Gateway interface {
	ListMessages(ctx context.Context) ([]session.Message, error)
	SendMessage(ctx context.Context, content string) ([]session.Message, error)
	ClearChat(ctx context.Context) error
}

// ToastVariant selects how a toast is presented
type ToastVariant string

const (
	ToastDefault     ToastVariant = "default"
	ToastDestructive ToastVariant = "destructive"
)

// Toast is a transient notification for the visitor
type Toast struct {
	Title       string
	Description string
	Variant     ToastVariant
}

// Options configures a ChatBot
type Options struct {
	ClearOnMount bool               // Clear the conversation before the first load
	Cache        *cache.QueryCache // Defaults to a new cache
	Logger       *slog.Logger
	Tracer       trace.Tracer
	Meter        metric.Meter
}

// ChatBot drives the conversation: it issues commands through the gateway and keeps
// the message-list query fresh by invalidating and re-fetching, never by patching.
type ChatBot struct {
	gateway      Gateway
	prefs        *Preferences
	cache        *cache.QueryCache
	clearOnMount bool
	logger       *slog.Logger
	tracer       trace.Tracer
	commands     metric.Int64Counter
}

// NewChatBot creates a new ChatBot instance
func NewChatBot(gw Gateway, prefs *Preferences, opts Options) *ChatBot {
	if prefs == nil {
		prefs = NewPreferences(i18n.Default)
	}
	cb := &ChatBot{
		gateway:      gw,
		prefs:        prefs,
		cache:        opts.Cache,
		clearOnMount: opts.ClearOnMount,
		logger:       opts.Logger,
		tracer:       opts.Tracer,
	}
	if cb.cache == nil {
		cb.cache = cache.NewQueryCache()
	}
	if cb.logger == nil {
		cb.logger = slog.Default()
	}
	if cb.tracer == nil {
		cb.tracer = otel.Tracer("concierge/chatbot")
	}
	meter := opts.Meter
	if meter == nil {
		meter = otel.Meter("concierge/chatbot")
	}

	counter, err := meter.Int64Counter(
		"concierge.commands",
		metric.WithDescription("Chat commands issued by the visitor"),
	)
	if err != nil {
		cb.logger.Warn("failed to create counter", "name", "concierge.commands", "error", err)
	}
	cb.commands = counter

	if !cb.clearOnMount {
		cb.logger.Info("clear on mount disabled, previous conversation will be kept")
	}
	return cb
}

// Preferences returns the shared display preferences.
func (cb *ChatBot) Preferences() *Preferences {
	return cb.prefs
}

// ClearOnMount reports whether Mount clears the conversation.
func (cb *ChatBot) ClearOnMount() bool {
	return cb.clearOnMount
}

// Mount prepares the conversation for first display: it clears it when configured to,
// then loads it. A failed clear is returned but the load still happens.
func (cb *ChatBot) Mount(ctx context.Context) error {
	var clearErr error
	if cb.clearOnMount {
		if err := cb.run(ctx, "clear_on_mount", func(ctx context.Context) error {
			return cb.gateway.ClearChat(ctx)
		}); err != nil {
			cb.logger.Error("failed to clear conversation on mount", "error", err)
			clearErr = fmt.Errorf("failed to clear conversation: %w", err)
		}
	}

	if err := cb.Refresh(ctx); err != nil {
		return errors.Join(clearErr, err)
	}
	return clearErr
}

// Refresh re-fetches the message list and stores the result in the cache.
func (cb *ChatBot) Refresh(ctx context.Context) error {
	return cb.run(ctx, "refresh", func(ctx context.Context) error {
		msgs, err := cb.gateway.ListMessages(ctx)
		if err != nil {
			cb.cache.SetError(MessagesQueryKey, err)
			return err
		}
		cb.cache.Set(MessagesQueryKey, msgs)
		cb.logger.Debug("messages loaded", "count", len(msgs))
		return nil
	})
}

// Send submits raw after trimming it. Blank input is not sent and reports false.
// On success the message-list cache is invalidated; the caller re-fetches.
func (cb *ChatBot) Send(ctx context.Context, raw string) (bool, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return false, nil
	}

	err := cb.run(ctx, "send", func(ctx context.Context) error {
		_, err := cb.gateway.SendMessage(ctx, content)
		return err
	})
	if err != nil {
		cb.logger.Error("failed to send message", "error", err)
		return false, err
	}

	cb.cache.Invalidate(MessagesQueryKey)
	cb.logger.Info("message sent", "length", len(content))
	return true, nil
}

// Clear deletes the conversation and returns the confirmation toast to show.
func (cb *ChatBot) Clear(ctx context.Context) (Toast, error) {
	err := cb.run(ctx, "clear", func(ctx context.Context) error {
		return cb.gateway.ClearChat(ctx)
	})
	if err != nil {
		cb.logger.Error("failed to clear conversation", "error", err)
		return Toast{}, err
	}

	cb.cache.Invalidate(MessagesQueryKey)
	cb.logger.Info("conversation cleared")
	return Toast{
		Title:       cb.prefs.T(i18n.ChatCleared),
		Description: cb.prefs.T(i18n.AllMessagesRemoved),
		Variant:     ToastDefault,
	}, nil
}

// Messages returns the current message-list query state.
func (cb *ChatBot) Messages() cache.Entry {
	return cb.cache.Get(MessagesQueryKey)
}

// NeedsRefresh reports whether the message list must be re-fetched.
func (cb *ChatBot) NeedsRefresh() bool {
	return cb.cache.IsStale(MessagesQueryKey)
}

// ErrorToast turns a failed command into a destructive toast.
func (cb *ChatBot) ErrorToast(err error) Toast {
	return Toast{
		Title:       cb.prefs.T(i18n.ErrorTitle),
		Description: err.Error(),
		Variant:     ToastDestructive,
	}
}

// run executes one gateway command inside a span and counts its outcome.
func (cb *ChatBot) run(ctx context.Context, command string, fn func(context.Context) error) error {
	ctx, span := cb.tracer.Start(ctx, "concierge_command",
		trace.WithAttributes(attribute.String("command", command)),
	)
	defer span.End()

	err := fn(ctx)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if cb.commands != nil {
		cb.commands.Add(ctx, 1, metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("outcome", outcome),
		))
	}
	return err
}
