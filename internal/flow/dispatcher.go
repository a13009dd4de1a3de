// Package flow drives the conversation: it turns button taps and typed
// messages into session changes, screens and, at the end of a flow, stored
// transactions.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/expensebot/core/logger"
	"github.com/m3rciful/expensebot/internal/menu"
	"github.com/m3rciful/expensebot/internal/nav"
	"github.com/m3rciful/expensebot/internal/preset"
	"github.com/m3rciful/expensebot/internal/session"
	"github.com/m3rciful/expensebot/internal/txn"
)

// Deps are the collaborators of a Dispatcher.
type Deps struct {
	Sessions   session.Store
	Messenger  Messenger
	Ledger     Ledger
	Reporter   Reporter
	Authorizer Authorizer
	Locker     *session.Locker
	// Now returns the current time in the configured time zone.
	Now func() time.Time
}

// Dispatcher is the conversation state machine.
type Dispatcher struct {
	sessions session.Store
	msg      Messenger
	ledger   Ledger
	reports  Reporter
	auth     Authorizer
	locker   *session.Locker
	now      func() time.Time
}

// New returns a Dispatcher. Missing Authorizer, Locker and clock get defaults.
func New(d Deps) *Dispatcher {
	if d.Authorizer == nil {
		d.Authorizer = AllowAll
	}
	if d.Locker == nil {
		d.Locker = session.NewLocker()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Dispatcher{
		sessions: d.Sessions,
		msg:      d.Messenger,
		ledger:   d.Ledger,
		reports:  d.Reporter,
		auth:     d.Authorizer,
		locker:   d.Locker,
		now:      d.Now,
	}
}

// InProgress reports whether the user's next message answers a free-text step.
func (d *Dispatcher) InProgress(userID int64) bool {
	s, ok := d.sessions.Get(userID)
	return ok && s.AwaitingInput
}

// HandleText routes a typed message to the active step or to command handling.
func (d *Dispatcher) HandleText(ctx context.Context, ev TextEvent) error {
	if !d.auth.Allowed(ev.UserID) {
		return d.deny(ctx, ev.ChatID, ev.UserID, "")
	}
	unlock := d.locker.Lock(ev.UserID)
	defer unlock()

	if d.InProgress(ev.UserID) {
		return d.HandleInput(ctx, ev)
	}
	return d.HandleCommand(ctx, ev)
}

// HandleCommand answers text received outside a free-text step.
func (d *Dispatcher) HandleCommand(ctx context.Context, ev TextEvent) error {
	cmd := strings.TrimSpace(ev.Text)
	if at := strings.IndexByte(cmd, '@'); at > 0 && strings.HasPrefix(cmd, "/") {
		cmd = cmd[:at]
	}
	d.log(ctx, slog.LevelDebug, "flow.command", slog.String("command", logger.SanitizeLimit(cmd, 32)))

	switch strings.ToLower(cmd) {
	case "/help", "help":
		return d.msg.SendMessage(ctx, ev.ChatID, menu.MsgHelp, nil)
	case "/cancel", "cancel":
		d.sessions.Clear(ev.UserID)
		return d.msg.SendMessage(ctx, ev.ChatID, menu.MsgCancelled, nil)
	}
	return d.show(ctx, ev.ChatID, menu.Main())
}

// HandleInput validates the answer to the current free-text step. Invalid
// answers re-prompt and leave the session untouched.
func (d *Dispatcher) HandleInput(ctx context.Context, ev TextEvent) error {
	s, ok := d.sessions.Get(ev.UserID)
	if !ok || !s.AwaitingInput {
		return d.HandleCommand(ctx, ev)
	}
	f, ok := d.flowOf(s)
	if !ok {
		d.sessions.Clear(ev.UserID)
		return d.show(ctx, ev.ChatID, menu.Main())
	}

	var patch txn.Draft
	switch s.Step {
	case txn.StepAmount, txn.StepAmountOut:
		n, err := txn.ParseAmount(ev.Text)
		if err != nil {
			return d.reject(ctx, ev.ChatID, s)
		}
		patch = patch.WithNumber(s.Step, n)
	case txn.StepAdminTax:
		n, err := txn.ParseFee(ev.Text)
		if err != nil {
			return d.reject(ctx, ev.ChatID, s)
		}
		patch = patch.WithNumber(s.Step, n)
	case txn.StepDescription:
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return d.reject(ctx, ev.ChatID, s)
		}
		patch = patch.WithText(s.Step, text)
	default:
		d.sessions.Clear(ev.UserID)
		return d.show(ctx, ev.ChatID, menu.Main())
	}

	d.sessions.MergeFields(ev.UserID, patch)
	d.log(ctx, slog.LevelDebug, "flow.input",
		slog.String("status", "ok"),
		slog.String("txn_type", s.Type.String()),
		slog.String("step", s.Step.String()))

	next, ok := f.Next(s.Step)
	if !ok {
		return d.finalize(ctx, ev.ChatID, ev.UserID, f)
	}
	return d.goTo(ctx, ev.ChatID, ev.UserID, f, next)
}

func (d *Dispatcher) reject(ctx context.Context, chatID int64, s session.Session) error {
	d.log(ctx, slog.LevelInfo, "flow.input",
		slog.String("status", "skip"),
		slog.String("txn_type", s.Type.String()),
		slog.String("step", s.Step.String()),
		slog.String("reason", "invalid"))
	return d.msg.SendMessage(ctx, chatID, menu.Invalid(s.Step), nil)
}

// HandleCallback acknowledges a button tap and dispatches its token.
func (d *Dispatcher) HandleCallback(ctx context.Context, ev CallbackEvent) error {
	if !d.auth.Allowed(ev.UserID) {
		return d.deny(ctx, ev.ChatID, ev.UserID, ev.CallbackID)
	}
	unlock := d.locker.Lock(ev.UserID)
	defer unlock()

	if err := d.msg.AnswerCallback(ctx, ev.CallbackID, ""); err != nil {
		d.log(ctx, slog.LevelWarn, "flow.callback_answer", slog.String("status", "fail"), slog.String("err", err.Error()))
	}

	tok, err := nav.Decode(ev.Data)
	if err != nil {
		return d.stale(ctx, ev.ChatID, ev.Data, err.Error())
	}
	d.log(ctx, slog.LevelDebug, "flow.callback", slog.String("token", logger.SanitizeLimit(ev.Data, nav.MaxLen)))

	switch tok.Kind {
	case nav.KindMenu:
		return d.showScreen(ctx, ev.ChatID, tok.Screen)
	case nav.KindNew:
		return d.start(ctx, ev.ChatID, ev.UserID, tok.Type)
	case nav.KindSelect:
		f, ok := txn.NewFlow(tok.Type)
		if !ok {
			return d.stale(ctx, ev.ChatID, ev.Data, "unknown type")
		}
		return d.selectValue(ctx, ev, f, tok)
	case nav.KindPreset:
		return d.startPreset(ctx, ev.ChatID, ev.UserID, tok.Preset)
	case nav.KindPresetSelect:
		p, ok := preset.Lookup(tok.Preset)
		if !ok {
			return d.stale(ctx, ev.ChatID, ev.Data, "unknown preset")
		}
		f, _ := p.Flow(d.now())
		return d.selectValue(ctx, ev, f, tok)
	case nav.KindBack:
		return d.back(ctx, ev, tok)
	case nav.KindRecent:
		return d.recent(ctx, ev.ChatID, tok.Type)
	case nav.KindWeekly:
		return d.weekly(ctx, ev.ChatID, tok.Offset)
	}
	return d.stale(ctx, ev.ChatID, ev.Data, "unknown action")
}

func (d *Dispatcher) showScreen(ctx context.Context, chatID int64, s nav.Screen) error {
	switch s {
	case nav.ScreenAdd:
		return d.show(ctx, chatID, menu.Add())
	case nav.ScreenRecent:
		return d.show(ctx, chatID, menu.Recent())
	case nav.ScreenRecurring:
		return d.show(ctx, chatID, menu.Recurring(preset.All()))
	case nav.ScreenWeekly:
		return d.show(ctx, chatID, menu.Weekly(d.now()))
	}
	return d.show(ctx, chatID, menu.Main())
}

func (d *Dispatcher) start(ctx context.Context, chatID, userID int64, t txn.Type) error {
	f, ok := txn.NewFlow(t)
	if !ok {
		return d.show(ctx, chatID, menu.Main())
	}
	d.sessions.Create(userID, t)
	d.log(ctx, slog.LevelInfo, "flow.start", slog.String("txn_type", t.String()))
	return d.goTo(ctx, chatID, userID, f, f.First())
}

func (d *Dispatcher) startPreset(ctx context.Context, chatID, userID int64, key string) error {
	p, ok := preset.Lookup(key)
	if !ok {
		return d.stale(ctx, chatID, key, "unknown preset")
	}
	f, ok := p.Flow(d.now())
	if !ok {
		return d.show(ctx, chatID, menu.Main())
	}
	d.open(userID, f)
	d.log(ctx, slog.LevelInfo, "flow.start",
		slog.String("txn_type", p.Type.String()),
		slog.String("preset", p.Key))

	step, ok := f.Start()
	if !ok {
		return d.finalize(ctx, chatID, userID, f)
	}
	return d.goTo(ctx, chatID, userID, f, step)
}

// open creates the session of a flow, seeded with its locked fields.
func (d *Dispatcher) open(userID int64, f txn.Flow) {
	d.sessions.Create(userID, f.Type)
	d.sessions.MergeFields(userID, f.Locked)
	if f.Preset != "" {
		d.sessions.Patch(userID, session.Patch{Preset: session.StringPtr(f.Preset)})
	}
}

// selectValue applies a selection token. The token carries every open
// selection up to its step, so a missing session is rebuilt from it.
func (d *Dispatcher) selectValue(ctx context.Context, ev CallbackEvent, f txn.Flow, tok nav.Token) error {
	draft, err := d.replay(f, tok.Step, tok.Values, true)
	if errors.Is(err, errSelfTransfer) {
		d.log(ctx, slog.LevelInfo, "flow.select",
			slog.String("status", "skip"),
			slog.String("txn_type", f.Type.String()),
			slog.String("reason", "self_transfer"))
		if err := d.msg.SendMessage(ctx, ev.ChatID, menu.MsgSelfTransfer, nil); err != nil {
			return err
		}
		return d.show(ctx, ev.ChatID, menu.Step(f, txn.StepToAccount, draft))
	}
	if err != nil {
		return d.stale(ctx, ev.ChatID, ev.Data, err.Error())
	}

	s, ok := d.sessions.Get(ev.UserID)
	switch {
	case !ok:
		d.open(ev.UserID, f)
	case s.Type != f.Type || s.Preset != f.Preset:
		return d.stale(ctx, ev.ChatID, ev.Data, "session mismatch")
	}
	d.sessions.MergeFields(ev.UserID, draft)

	next, ok := f.Next(tok.Step)
	if !ok {
		return d.finalize(ctx, ev.ChatID, ev.UserID, f)
	}
	return d.goTo(ctx, ev.ChatID, ev.UserID, f, next)
}

var (
	errArity        = errors.New("selection count does not match step")
	errUnknownStep  = errors.New("step is not open in this flow")
	errUnknownValue = errors.New("value not in catalog")
	errSelfTransfer = errors.New("from and to accounts are equal")
)

// replay rebuilds the draft described by the token values of the open
// selections before step, plus step itself when withStep is set. Locked fields
// of the flow are included.
func (d *Dispatcher) replay(f txn.Flow, step txn.Step, values []string, withStep bool) (txn.Draft, error) {
	idx := f.Index(step)
	if idx < 0 {
		return txn.Draft{}, errUnknownStep
	}
	want := idx
	if withStep {
		want++
	}
	if len(values) != want {
		return txn.Draft{}, errArity
	}
	draft := f.Locked
	open := f.OpenSelections()
	for i, v := range values {
		s := open[i]
		label, ok := txn.Resolve(s, draft, v)
		if !ok {
			if s == txn.StepToAccount && v == draft.FromAccount {
				return draft, errSelfTransfer
			}
			return txn.Draft{}, errUnknownValue
		}
		draft = draft.WithText(s, label)
	}
	return draft, nil
}

// goTo positions the session at step and renders it.
func (d *Dispatcher) goTo(ctx context.Context, chatID, userID int64, f txn.Flow, step txn.Step) error {
	s, _ := d.sessions.Get(userID)
	awaiting := step.FreeText()
	d.sessions.Patch(userID, session.Patch{
		Step:          session.StepPtr(step),
		AwaitingInput: session.BoolPtr(awaiting),
	})
	if awaiting {
		return d.show(ctx, chatID, menu.Input(f, step, s.Draft))
	}
	return d.show(ctx, chatID, menu.Step(f, step, s.Draft))
}

// back re-renders an earlier screen. Fields are never changed; back_main
// drops the session.
func (d *Dispatcher) back(ctx context.Context, ev CallbackEvent, tok nav.Token) error {
	if tok.Screen != "" {
		if tok.Screen == nav.ScreenMain {
			d.sessions.Clear(ev.UserID)
		}
		return d.showScreen(ctx, ev.ChatID, tok.Screen)
	}

	var f txn.Flow
	if tok.Preset != "" {
		p, ok := preset.Lookup(tok.Preset)
		if !ok {
			return d.stale(ctx, ev.ChatID, ev.Data, "unknown preset")
		}
		f, _ = p.Flow(d.now())
	} else {
		var ok bool
		if f, ok = txn.NewFlow(tok.Type); !ok {
			return d.stale(ctx, ev.ChatID, ev.Data, "unknown type")
		}
	}
	draft, err := d.replay(f, tok.Step, tok.Values, false)
	if err != nil {
		return d.stale(ctx, ev.ChatID, ev.Data, err.Error())
	}

	// A live session of this flow stops waiting for text while its menus are shown.
	if s, ok := d.sessions.Get(ev.UserID); ok && s.Type == f.Type && s.Preset == f.Preset {
		d.sessions.Patch(ev.UserID, session.Patch{
			Step:          session.StepPtr(tok.Step),
			AwaitingInput: session.BoolPtr(false),
		})
	}
	return d.show(ctx, ev.ChatID, menu.Step(f, tok.Step, draft))
}

// finalize builds the record, stores it and always ends the session.
func (d *Dispatcher) finalize(ctx context.Context, chatID, userID int64, f txn.Flow) error {
	start := time.Now()
	s, _ := d.sessions.Get(userID)
	defer d.sessions.Clear(userID)

	rec, err := f.Build(s.Draft, d.now())
	if err == nil {
		var id string
		id, err = d.ledger.Submit(ctx, rec)
		if err == nil {
			d.log(ctx, slog.LevelInfo, "flow.finalize",
				slog.String("status", "ok"),
				slog.String("txn_type", f.Type.String()),
				slog.String("record_id", id),
				slog.Duration("duration", logger.Took(start)))
			if err := d.msg.SendMessage(ctx, chatID, menu.Success(rec), nil); err != nil {
				return err
			}
			return d.show(ctx, chatID, menu.Main())
		}
	}

	d.log(ctx, slog.LevelError, "flow.finalize",
		slog.String("status", "fail"),
		slog.String("txn_type", f.Type.String()),
		slog.String("err", err.Error()),
		slog.Duration("duration", logger.Took(start)))
	if err := d.msg.SendMessage(ctx, chatID, menu.MsgError, nil); err != nil {
		return err
	}
	return d.show(ctx, chatID, menu.Main())
}

func (d *Dispatcher) flowOf(s session.Session) (txn.Flow, bool) {
	if s.Preset != "" {
		p, ok := preset.Lookup(s.Preset)
		if !ok {
			return txn.Flow{}, false
		}
		return p.Flow(s.CreatedAt)
	}
	return txn.NewFlow(s.Type)
}

func (d *Dispatcher) deny(ctx context.Context, chatID, userID int64, callbackID string) error {
	d.log(ctx, slog.LevelWarn, "flow.denied", slog.Int64("user_id", userID))
	if callbackID != "" {
		if err := d.msg.AnswerCallback(ctx, callbackID, menu.MsgAccessDenied); err != nil {
			return err
		}
	}
	return d.msg.SendMessage(ctx, chatID, menu.MsgAccessDenied, nil)
}

// stale answers a token that no longer matches anything with the main menu.
func (d *Dispatcher) stale(ctx context.Context, chatID int64, data, reason string) error {
	d.log(ctx, slog.LevelInfo, "flow.stale",
		slog.String("status", "skip"),
		slog.String("token", logger.SanitizeLimit(data, nav.MaxLen)),
		slog.String("reason", reason))
	return d.show(ctx, chatID, menu.Main())
}

func (d *Dispatcher) show(ctx context.Context, chatID int64, s menu.Screen) error {
	return d.msg.SendMessage(ctx, chatID, s.Text, s.Keyboard)
}

func (d *Dispatcher) log(ctx context.Context, level slog.Level, event string, attrs ...slog.Attr) {
	logger.Log(ctx, logger.Flow, level, event, attrs...)
}
