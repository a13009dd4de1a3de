// Package nav encodes and decodes the navigation tokens carried by inline
// buttons. A token is an action followed by positional parameters joined with
// '_'; parameter values are escaped so that '_' inside them survives.
package nav

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/expensebot/internal/txn"
)

// MaxLen is the largest callback payload the messaging platform accepts.
const MaxLen = 64

const sep = "_"

// ErrMalformed is returned for data that is not a valid token.
var ErrMalformed = errors.New("malformed navigation token")

// Kind is the decoded action of a token.
type Kind int

const (
	// KindMenu opens a top-level screen: menu_<screen>.
	KindMenu Kind = iota + 1
	// KindNew starts a transaction type: new_<type>.
	KindNew
	// KindSelect picks a value: <step>_<type>_<prior...>_<value>.
	KindSelect
	// KindBack re-renders an earlier screen: back_<screen>,
	// back_<step>_<type>_<prior...> or back_recurring_<step>_<preset>_<prior...>.
	KindBack
	// KindPreset starts a recurring preset: recurring_select_<preset>.
	KindPreset
	// KindPresetSelect picks a value inside a preset: recurring_<step>_<preset>_<prior...>_<value>.
	KindPresetSelect
	// KindRecent lists the latest records of a type: recent_<type>.
	KindRecent
	// KindWeekly shows a weekly summary: weekly_<offset>.
	KindWeekly
)

// Screen names a top-level menu.
type Screen string

const (
	ScreenMain      Screen = "main"
	ScreenAdd       Screen = "add"
	ScreenRecent    Screen = "recent"
	ScreenRecurring Screen = "recurring"
	ScreenWeekly    Screen = "weekly"
)

func (s Screen) valid() bool {
	switch s {
	case ScreenMain, ScreenAdd, ScreenRecent, ScreenRecurring, ScreenWeekly:
		return true
	}
	return false
}

// Token is the structured form of a navigation token.
type Token struct {
	Kind   Kind
	Screen Screen
	Type   txn.Type
	Step   txn.Step
	Preset string
	Values []string
	Offset int
}

// Menu opens a top-level screen.
func Menu(s Screen) Token { return Token{Kind: KindMenu, Screen: s} }

// New starts a flow of type t.
func New(t txn.Type) Token { return Token{Kind: KindNew, Type: t} }

// Select picks the last of values for step; earlier values are prior selections.
func Select(t txn.Type, step txn.Step, values ...string) Token {
	return Token{Kind: KindSelect, Type: t, Step: step, Values: values}
}

// BackTo re-renders step of a type flow with the given prior selections.
func BackTo(t txn.Type, step txn.Step, prior ...string) Token {
	return Token{Kind: KindBack, Type: t, Step: step, Values: prior}
}

// Back returns to a top-level screen.
func Back(s Screen) Token { return Token{Kind: KindBack, Screen: s} }

// Preset starts the recurring preset key.
func Preset(key string) Token { return Token{Kind: KindPreset, Preset: key} }

// PresetSelect picks a value for an open step of a preset flow.
func PresetSelect(key string, step txn.Step, values ...string) Token {
	return Token{Kind: KindPresetSelect, Preset: key, Step: step, Values: values}
}

// BackToPreset re-renders an open step of a preset flow.
func BackToPreset(key string, step txn.Step, prior ...string) Token {
	return Token{Kind: KindBack, Preset: key, Step: step, Values: prior}
}

// Recent lists the latest records of a type.
func Recent(t txn.Type) Token { return Token{Kind: KindRecent, Type: t} }

// Weekly shows the summary of the week offset weeks ago.
func Weekly(offset int) Token { return Token{Kind: KindWeekly, Offset: offset} }

// Encode renders t in wire form.
func Encode(t Token) string {
	parts := make([]string, 0, 3+len(t.Values))
	switch t.Kind {
	case KindMenu:
		parts = append(parts, "menu", string(t.Screen))
	case KindNew:
		parts = append(parts, "new", string(t.Type))
	case KindSelect:
		parts = append(parts, t.Step.Action(), string(t.Type))
	case KindBack:
		parts = append(parts, "back")
		switch {
		case t.Screen != "":
			parts = append(parts, string(t.Screen))
		case t.Preset != "":
			parts = append(parts, "recurring", t.Step.Action(), t.Preset)
		default:
			parts = append(parts, t.Step.Action(), string(t.Type))
		}
	case KindPreset:
		parts = append(parts, "recurring", "select", t.Preset)
	case KindPresetSelect:
		parts = append(parts, "recurring", t.Step.Action(), t.Preset)
	case KindRecent:
		parts = append(parts, "recent", string(t.Type))
	case KindWeekly:
		parts = append(parts, "weekly", strconv.Itoa(t.Offset))
	}
	for _, v := range t.Values {
		parts = append(parts, escape(v))
	}
	return strings.Join(parts, sep)
}

// String implements fmt.Stringer.
func (t Token) String() string { return Encode(t) }

// Decode parses wire data into a Token. Telebot's "\f" unique prefix is ignored.
func Decode(data string) (Token, error) {
	data = strings.TrimPrefix(data, "\f")
	if data == "" {
		return Token{}, ErrMalformed
	}
	raw := strings.Split(data, sep)
	parts := make([]string, len(raw))
	for i, p := range raw {
		v, err := unescape(p)
		if err != nil {
			return Token{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		parts[i] = v
	}
	head, rest := parts[0], parts[1:]

	switch head {
	case "menu":
		if len(rest) != 1 || !Screen(rest[0]).valid() {
			return Token{}, malformed(data)
		}
		return Menu(Screen(rest[0])), nil
	case "new":
		t, err := single(rest, data)
		if err != nil {
			return Token{}, err
		}
		return New(t), nil
	case "recent":
		t, err := single(rest, data)
		if err != nil {
			return Token{}, err
		}
		return Recent(t), nil
	case "weekly":
		if len(rest) != 1 {
			return Token{}, malformed(data)
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 0 {
			return Token{}, malformed(data)
		}
		return Weekly(n), nil
	case "recurring":
		return decodePreset(KindPresetSelect, rest, data)
	case "back":
		return decodeBack(rest, data)
	}

	step, ok := txn.StepForAction(head)
	if !ok {
		return Token{}, malformed(data)
	}
	t, vals, err := typed(rest, data)
	if err != nil {
		return Token{}, err
	}
	if len(vals) == 0 {
		return Token{}, malformed(data)
	}
	return Select(t, step, vals...), nil
}

func decodeBack(rest []string, data string) (Token, error) {
	if len(rest) == 0 {
		return Token{}, malformed(data)
	}
	if len(rest) == 1 && Screen(rest[0]).valid() {
		return Back(Screen(rest[0])), nil
	}
	if rest[0] == "recurring" {
		return decodePreset(KindBack, rest[1:], data)
	}
	step, ok := txn.StepForAction(rest[0])
	if !ok {
		return Token{}, malformed(data)
	}
	t, vals, err := typed(rest[1:], data)
	if err != nil {
		return Token{}, err
	}
	return BackTo(t, step, vals...), nil
}

// decodePreset handles the parameters after "recurring".
func decodePreset(kind Kind, rest []string, data string) (Token, error) {
	if len(rest) < 2 || rest[1] == "" {
		return Token{}, malformed(data)
	}
	if kind == KindPresetSelect && rest[0] == "select" {
		if len(rest) != 2 {
			return Token{}, malformed(data)
		}
		return Preset(rest[1]), nil
	}
	step, ok := txn.StepForAction(rest[0])
	if !ok {
		return Token{}, malformed(data)
	}
	vals := rest[2:]
	if len(vals) == 0 {
		vals = nil
	}
	if kind == KindBack {
		return BackToPreset(rest[1], step, vals...), nil
	}
	if len(vals) == 0 {
		return Token{}, malformed(data)
	}
	return PresetSelect(rest[1], step, vals...), nil
}

func single(rest []string, data string) (txn.Type, error) {
	if len(rest) != 1 {
		return "", malformed(data)
	}
	t, ok := txn.ParseType(rest[0])
	if !ok {
		return "", malformed(data)
	}
	return t, nil
}

func typed(rest []string, data string) (txn.Type, []string, error) {
	if len(rest) == 0 {
		return "", nil, malformed(data)
	}
	t, ok := txn.ParseType(rest[0])
	if !ok {
		return "", nil, malformed(data)
	}
	vals := rest[1:]
	if len(vals) == 0 {
		vals = nil
	}
	return t, vals, nil
}

func malformed(data string) error {
	return fmt.Errorf("%w: %q", ErrMalformed, data)
}

func escape(v string) string {
	if !strings.ContainsAny(v, "_%") {
		return v
	}
	v = strings.ReplaceAll(v, "%", "%25")
	return strings.ReplaceAll(v, "_", "%5F")
}

func unescape(v string) (string, error) {
	if !strings.Contains(v, "%") {
		return v, nil
	}
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] != '%' {
			b.WriteByte(v[i])
			continue
		}
		if i+3 > len(v) {
			return "", fmt.Errorf("truncated escape in %q", v)
		}
		switch v[i+1 : i+3] {
		case "25":
			b.WriteByte('%')
		case "5F":
			b.WriteByte('_')
		default:
			return "", fmt.Errorf("unknown escape %q", v[i:i+3])
		}
		i += 2
	}
	return b.String(), nil
}

// Actions lists every head word a token can start with.
func Actions() []string {
	return append([]string{"menu", "new", "back", "recurring", "recent", "weekly"}, txn.SelectionActions()...)
}
