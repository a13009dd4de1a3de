package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/expensebot/internal/txn"
)

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := New(Config{
		Token:   "secret",
		BaseURL: srv.URL,
		Types:   map[string]txn.Type{"db-variable": txn.Variable},
	})
	require.NoError(t, err)
	return s
}

// field walks nested JSON objects and arrays by key or index.
func field(t *testing.T, v any, path ...any) any {
	t.Helper()
	for _, p := range path {
		switch k := p.(type) {
		case string:
			m, ok := v.(map[string]any)
			require.True(t, ok, "not an object at %q", k)
			v = m[k]
		case int:
			a, ok := v.([]any)
			require.True(t, ok, "not an array at %d", k)
			require.Greater(t, len(a), k)
			v = a[k]
		}
	}
	return v
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{Token: "x", BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestCreateRecordBuildsPage(t *testing.T) {
	var body map[string]any
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/pages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Notion-Version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"object":"page","id":"page-1","properties":{}}`))
	})

	id, err := s.CreateRecord(context.Background(), "db-variable", txn.Entry{
		Type: txn.Variable, Title: "nasi goreng", Date: "2025-06-02", Month: "June",
		Properties: []txn.Property{
			{Name: txn.PropAmount, Kind: txn.KindNumber, Number: 15000},
			{Name: txn.PropAccount, Kind: txn.KindSelect, Text: "BCA", Link: "acc-1"},
			{Name: txn.PropCategory, Kind: txn.KindSelect, Text: "Survival"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "page-1", id)

	assert.Equal(t, "db-variable", field(t, body, "parent", "database_id"))
	props := field(t, body, "properties")
	assert.Equal(t, "nasi goreng", field(t, props, "Transaction", "title", 0, "text", "content"))
	assert.Contains(t, field(t, props, "Date", "date", "start"), "2025-06-02")
	assert.Equal(t, "June", field(t, props, "Month", "select", "name"))
	assert.EqualValues(t, 15000, field(t, props, "Amount", "number"))
	assert.Equal(t, "acc-1", field(t, props, "Account", "relation", 0, "id"))
	assert.Equal(t, "Survival", field(t, props, "Category", "select", "name"))
}

func TestQueryRecentDecodesAndResolvesRelations(t *testing.T) {
	var pageFetches atomic.Int32
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/databases/db-variable/query":
			var q map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&q))
			assert.EqualValues(t, 2, q["page_size"])
			assert.Equal(t, "descending", field(t, q, "sorts", 0, "direction"))
			_, _ = w.Write([]byte(`{"object":"list","has_more":false,"results":[
				{"object":"page","id":"p1","properties":{
					"Transaction":{"id":"t","type":"title","title":[{"type":"text","plain_text":"coffee"}]},
					"Date":{"id":"d","type":"date","date":{"start":"2025-06-03"}},
					"Month":{"id":"m","type":"select","select":{"name":"June"}},
					"Amount":{"id":"a","type":"number","number":20000},
					"Account":{"id":"r","type":"relation","relation":[{"id":"acc-1"}]}}},
				{"object":"page","id":"p2","properties":{
					"Transaction":{"id":"t","type":"title","title":[{"type":"text","plain_text":"tea"}]},
					"Account":{"id":"r","type":"relation","relation":[{"id":"acc-1"}]}}}
			]}`))
		case "/v1/pages/acc-1":
			pageFetches.Add(1)
			_, _ = w.Write([]byte(`{"object":"page","id":"acc-1","properties":{
				"Name":{"id":"title","type":"title","title":[{"type":"text","plain_text":"Cash"}]}}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	got, err := s.QueryRecent(context.Background(), "db-variable", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, txn.Variable, got[0].Type)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "coffee", got[0].Title)
	assert.Equal(t, "2025-06-03", got[0].Date)
	assert.Equal(t, "June", got[0].Month)
	assert.Equal(t, int64(20000), got[0].Number(txn.PropAmount))
	assert.Equal(t, "Cash", got[0].Text(txn.PropAccount))
	assert.Equal(t, "Cash", got[1].Text(txn.PropAccount))
	assert.Equal(t, int32(1), pageFetches.Load())
}

func TestQueryRangeFiltersDates(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var q map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		and, ok := field(t, q, "filter", "and").([]any)
		if assert.True(t, ok) && assert.Len(t, and, 2) {
			assert.Equal(t, propDate, field(t, and, 0, "property"))
			assert.Contains(t, field(t, and, 0, "date", "on_or_after"), "2025-06-01")
			assert.Contains(t, field(t, and, 1, "date", "on_or_before"), "2025-06-07")
		}
		_, _ = w.Write([]byte(`{"object":"list","results":[]}`))
	})

	got, err := s.QueryRange(context.Background(), "db-variable", "2025-06-01", "2025-06-07")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.QueryRange(context.Background(), "db-variable", "June", "2025-06-07")
	assert.Error(t, err)
}

func TestFindByLabel(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/databases/db-accounts/query", r.URL.Path)
		var q map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "Name", field(t, q, "filter", "property"))
		if field(t, q, "filter", "rich_text", "equals") == "BCA" {
			_, _ = w.Write([]byte(`{"object":"list","results":[{"object":"page","id":"acc-9","properties":{}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"object":"list","results":[]}`))
	})

	id, found, err := s.FindByLabel(context.Background(), "db-accounts", "BCA")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "acc-9", id)
	assert.Equal(t, "BCA", s.label(context.Background(), "acc-9"))

	_, found, err = s.FindByLabel(context.Background(), "db-accounts", "Jago")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAPIErrorSurfaces(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"object":"error","status":400,"code":"validation_error","message":"Amount is not a property"}`))
	})

	_, err := s.CreateRecord(context.Background(), "db-variable", txn.Entry{Title: "x"})
	var apiErr *notionapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.EqualValues(t, "validation_error", apiErr.Code)
	assert.Equal(t, "Amount is not a property", apiErr.Message)
}

func TestEmptyCollectionRejected(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	_, err := s.CreateRecord(context.Background(), "", txn.Entry{})
	assert.Error(t, err)
}
