package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/expensebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command with its handler and menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Restricted commands only run for users on the access allow-list.
	Restricted bool
	// Hidden commands work but are left out of the Telegram command menu.
	Hidden  bool
	Aliases []string
}

// Registry holds bot commands and callbacks. It is filled while wiring and
// read-only once the bot runs.
type Registry struct {
	commands         map[string]Command
	aliases          map[string]string
	callbacks        map[string]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry creates an empty Registry. Unknown callbacks are answered with
// a short notice until SetCallbackNotFound replaces the fallback.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

// commandKey lowercases a command and strips the @botname suffix Telegram
// appends in group chats.
func commandKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	if name != "" && name[0] != '/' {
		name = "/" + name
	}
	return name
}

// RegisterCommand adds a command under name, which must start with '/'.
func (r *Registry) RegisterCommand(name string, cmd Command) error {
	if cmd.Handler == nil || cmd.Description == "" || !strings.HasPrefix(name, "/") {
		r.wireWarn("register.command.skip", slog.String("name", name))
		return fmt.Errorf("telegram: invalid command %q", name)
	}
	key := commandKey(name)
	if _, taken := r.resolve(key); taken {
		r.wireWarn("register.command.duplicate", slog.String("name", name))
		return fmt.Errorf("telegram: command already registered: %s", name)
	}
	for _, alias := range cmd.Aliases {
		a := commandKey(alias)
		if _, taken := r.resolve(a); taken || a == key {
			return fmt.Errorf("telegram: alias %q of %s already registered", alias, name)
		}
	}
	r.commands[key] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[commandKey(alias)] = key
	}
	return nil
}

func (r *Registry) resolve(key string) (string, bool) {
	if _, ok := r.commands[key]; ok {
		return key, true
	}
	canonical, ok := r.aliases[key]
	return canonical, ok
}

// LookupCommand finds a command by name or alias and returns its canonical key.
func (r *Registry) LookupCommand(name string) (string, Command, bool) {
	key, ok := r.resolve(commandKey(name))
	if !ok {
		return "", Command{}, false
	}
	return key, r.commands[key], true
}

// Commands returns all registered commands keyed by canonical name.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

// MenuCommands lists the visible commands sorted by name.
func (r *Registry) MenuCommands() []tele.Command {
	var list []tele.Command
	for name, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// RegisterCallback maps a callback key to its handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		r.wireWarn("register.callback.skip", slog.String("key", key))
		return fmt.Errorf("telegram: invalid callback registration %q", key)
	}
	if _, exists := r.callbacks[key]; exists {
		r.wireWarn("register.callback.duplicate", slog.String("key", key))
		return fmt.Errorf("telegram: callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler for key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	h, ok := r.callbacks[key]
	return h, ok
}

// CallbackKeys returns the registered callback keys, sorted.
func (r *Registry) CallbackKeys() []string {
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetCallbackNotFound replaces the fallback for unknown callbacks.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the fallback for unknown callbacks.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// SetTextFallback sets the handler for text that matches no command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the handler for text that matches no command.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

func (r *Registry) wireWarn(event string, attrs ...slog.Attr) {
	logger.Warn(context.Background(), logger.Wire, event, attrs...)
}

// CommandSetter is the part of *tele.Bot that publishes the command menu.
type CommandSetter interface {
	SetCommands(opts ...interface{}) error
}

// PublishCommands replaces the Telegram command menu with the visible
// commands. An empty registry leaves the menu untouched.
func PublishCommands(ctx context.Context, bot CommandSetter, reg *Registry) error {
	list := reg.MenuCommands()
	if len(list) == 0 {
		return nil
	}
	if err := bot.SetCommands(list); err != nil {
		logger.Error(ctx, logger.Wire, "register.commands.set",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.Info(ctx, logger.Wire, "register.commands.set",
		slog.String("status", "ok"),
		slog.Int("count", len(list)),
	)
	return nil
}
