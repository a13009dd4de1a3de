package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coredatabase "github.com/m3rciful/expensebot/core/database"
	"github.com/m3rciful/expensebot/internal/config"
	"github.com/m3rciful/expensebot/internal/ledger"
	"github.com/m3rciful/expensebot/internal/menu"
	"github.com/m3rciful/expensebot/internal/session"
	"github.com/m3rciful/expensebot/internal/store"
	"github.com/m3rciful/expensebot/internal/txn"
)

const (
	member   int64 = 42
	stranger int64 = 7
)

type fakeMessenger struct {
	mu       sync.Mutex
	texts    []string
	answered []string
}

func (m *fakeMessenger) SendMessage(_ context.Context, _ int64, text string, _ menu.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

func (m *fakeMessenger) AnswerCallback(_ context.Context, id, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered = append(m.answered, id)
	return nil
}

func (m *fakeMessenger) SendPhoto(context.Context, int64, []byte, string) error { return nil }

func (m *fakeMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Access.AllowedUsers = []int64{member}
	cfg.Session.TTL = session.DefaultTTL
	cfg.Session.SweepInterval = time.Minute
	cfg.Store.Backend = config.BackendMemory
	cfg.Ledger = ledger.Config{
		Collections: map[txn.Type]ledger.Route{
			txn.Variable: {Default: "var-db", Months: map[string]string{"June": "var-june"}},
			txn.Transfer: {Default: "transfer-db"},
		},
		Relations: map[string]string{
			txn.PropAccount:     "accounts-db",
			txn.PropFromAccount: "accounts-db",
			txn.PropCategory:    "categories-db",
		},
	}
	return cfg
}

type harness struct {
	bot *tele.Bot
	msg *fakeMessenger
	app *App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)

	msg := &fakeMessenger{}
	now := func() time.Time { return time.Date(2025, time.June, 4, 9, 0, 0, 0, time.UTC) }
	a, err := New(context.Background(), testConfig(), Options{
		Bot:       bot,
		Messenger: msg,
		Now:       now,
	})
	require.NoError(t, err)

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	for _, r := range opts.Routes {
		bot.Handle(r.Endpoint, r.Handler)
	}
	return &harness{bot: bot, msg: msg, app: a}
}

func (h *harness) say(userID int64, text string) {
	h.bot.ProcessUpdate(tele.Update{Message: &tele.Message{
		Text:   text,
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
	}})
}

func (h *harness) tap(userID int64, id, data string) {
	h.bot.ProcessUpdate(tele.Update{Callback: &tele.Callback{
		ID:     id,
		Data:   data,
		Sender: &tele.User{ID: userID},
		Message: &tele.Message{
			Chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	}})
}

func TestStartShowsMainMenu(t *testing.T) {
	h := newHarness(t)
	h.say(member, "/start")
	assert.Equal(t, menu.Main().Text, h.msg.last())
}

func TestRestrictedCommandRejectsStrangers(t *testing.T) {
	h := newHarness(t)
	h.say(stranger, "/start")
	assert.Equal(t, menu.MsgAccessDenied, h.msg.last())
}

func TestIDCommandIsOpen(t *testing.T) {
	h := newHarness(t)
	h.say(stranger, "/id")
	assert.Contains(t, h.msg.last(), "7")
}

func TestCallbackStartsFlow(t *testing.T) {
	h := newHarness(t)
	h.tap(member, "cb-1", "new_variable")

	assert.Contains(t, h.msg.last(), menu.Prompt(txn.StepMonth))
	assert.Contains(t, h.msg.answered, "cb-1")
	assert.False(t, h.app.Dispatcher().InProgress(member))
}

func TestConversationClaimsTypedAnswers(t *testing.T) {
	h := newHarness(t)
	h.tap(member, "cb-1", "new_variable")
	h.tap(member, "cb-2", "month_variable_June")
	h.tap(member, "cb-3", "category_variable_June_Survival")
	h.tap(member, "cb-4", "group_variable_June_Survival_Food")
	h.tap(member, "cb-5", "account_variable_June_Survival_Food_Cash")
	require.True(t, h.app.Dispatcher().InProgress(member))

	h.say(member, "15000")
	h.say(member, "lunch")

	entries := h.app.store.(*store.Memory).Entries("var-june")
	require.Len(t, entries, 1)
	assert.False(t, h.app.Dispatcher().InProgress(member))
}

func TestUnknownCallbackFallsBackToMenu(t *testing.T) {
	h := newHarness(t)
	h.tap(member, "cb-1", "bogus_token")
	assert.Equal(t, menu.Main().Text, h.msg.last())
}

func TestOpenStoreSeedsRelations(t *testing.T) {
	st, err := openStore(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	mem, ok := st.(*store.Memory)
	require.True(t, ok)

	_, found, err := mem.FindByLabel(context.Background(), "accounts-db", txn.Accounts[0])
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = mem.FindByLabel(context.Background(), "categories-db", txn.Categories[0])
	require.NoError(t, err)
	assert.True(t, found)

	seen := map[string]int{}
	for _, e := range mem.Entries("accounts-db") {
		seen[e.Title]++
	}
	for label, n := range seen {
		assert.Equal(t, 1, n, label)
	}
}

// countingStore stands in for a remote backend and counts inserts.
type countingStore struct {
	*store.Memory
	creates int
	findErr error
}

func (c *countingStore) CreateRecord(ctx context.Context, collection string, e txn.Entry) (string, error) {
	c.creates++
	return c.Memory.CreateRecord(ctx, collection, e)
}

func (c *countingStore) FindByLabel(ctx context.Context, collection, label string) (string, bool, error) {
	if c.findErr != nil {
		return "", false, c.findErr
	}
	return c.Memory.FindByLabel(ctx, collection, label)
}

func TestRelationSeederAddsOnlyMissingLabels(t *testing.T) {
	st := &countingStore{Memory: store.NewMemory()}
	st.Memory.AddLabel("accounts-db", txn.Accounts[0])
	seed := relationSeeder(map[string]string{
		txn.PropAccount:     "accounts-db",
		txn.PropFromAccount: "accounts-db",
	})

	require.NoError(t, seed.Seed(context.Background(), st))
	assert.Equal(t, len(txn.Accounts)-1, st.creates)
	assert.Len(t, st.Entries("accounts-db"), len(txn.Accounts))

	require.NoError(t, seed.Seed(context.Background(), st))
	assert.Equal(t, len(txn.Accounts)-1, st.creates)
}

func TestRelationSeederReportsLookupErrors(t *testing.T) {
	st := &countingStore{Memory: store.NewMemory(), findErr: errors.New("connection refused")}
	err := relationSeeder(map[string]string{txn.PropCategory: "categories-db"}).Seed(context.Background(), st)
	assert.ErrorContains(t, err, "connection refused")
	assert.Zero(t, st.creates)
}

func TestOpenStorePostgresNeedsConnection(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = config.BackendPostgres
	_, err := openStore(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestCollectionTypes(t *testing.T) {
	types := collectionTypes(testConfig())
	assert.Equal(t, map[string]txn.Type{
		"var-db":      txn.Variable,
		"var-june":    txn.Variable,
		"transfer-db": txn.Transfer,
	}, types)
}

func TestMigrateNeedsPostgres(t *testing.T) {
	err := MigrateDatabase(context.Background(), testConfig(), coredatabase.Up)
	require.Error(t, err)
}
