package monitor

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rdelorme/pricewatcher/config"
	"rdelorme/pricewatcher/internal/ledger"
	"rdelorme/pricewatcher/services/notifier"
	"rdelorme/pricewatcher/services/publisher"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// StubFetcher serves canned page content per URL
type StubFetcher struct {
	pages map[string]string
	errs  map[string]error
}

func (f *StubFetcher) Fetch(_ context.Context, url string) (string, error) {
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	return f.pages[url], nil
}

// MockNotifier records every delivered message
type MockNotifier struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

var _ notifier.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return stderrors.New("notify failed")
	}
	m.messages = append(m.messages, text)
	return nil
}

func (m *MockNotifier) Close() error { return nil }

// MockPublisher records every published observation
type MockPublisher struct {
	mu       sync.Mutex
	messages map[string][]byte
}

var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{messages: make(map[string][]byte)}
}

func (m *MockPublisher) Publish(key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	messageCopy := make([]byte, len(message))
	copy(messageCopy, message)
	m.messages[key] = messageCopy
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func testTime() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "history.json"))
	assert.NoError(t, err)
	return store
}

func product(id, url, threshold string) config.Product {
	return config.Product{
		ID:               id,
		URL:              url,
		Name:             "Product " + id,
		Currency:         "EUR",
		ThresholdPercent: dec(threshold),
	}
}

func TestMonitorFirstRunSeedsLedger(t *testing.T) {
	store := newStore(t)
	notify := &MockNotifier{}
	pub := NewMockPublisher()
	fetch := &StubFetcher{pages: map[string]string{
		"https://shop.example.com/p1": `<html><body><p>Prix: 49,99 €</p></body></html>`,
	}}

	m := New([]config.Product{product("p1", "https://shop.example.com/p1", "5")}, fetch, store, notify, pub)
	assert.NoError(t, m.Run(context.Background()))

	// Bootstrap: no alert regardless of threshold
	assert.Empty(t, notify.messages)

	entry, ok := store.Get("p1")
	assert.True(t, ok)
	assert.Equal(t, "49.99", entry.LastPrice.String())
	assert.Equal(t, "49.99", entry.MinPrice.String())
	assert.Equal(t, "49.99", entry.MaxPrice.String())

	// The observation went out on the stream
	var obs Observation
	assert.NoError(t, json.Unmarshal(pub.messages["p1"], &obs))
	assert.Equal(t, "p1", obs.EntityID)
	assert.Equal(t, "49.99", obs.Price.String())
	assert.Equal(t, "https://shop.example.com/p1", obs.SourceURL)
}

func TestMonitorAlertOnQualifyingDrop(t *testing.T) {
	store := newStore(t)
	notify := &MockNotifier{}
	fetch := &StubFetcher{pages: map[string]string{
		"https://shop.example.com/p1": `<html><body><p>Prix: 89,00 €</p></body></html>`,
	}}

	store.Record("p1", dec("100"), "https://shop.example.com/p1", testTime())

	m := New([]config.Product{product("p1", "https://shop.example.com/p1", "10")}, fetch, store, notify, NewMockPublisher())
	assert.NoError(t, m.Run(context.Background()))

	assert.Len(t, notify.messages, 1)
	assert.Contains(t, notify.messages[0], "*Product p1*")
	assert.Contains(t, notify.messages[0], "100.00 → 89.00 EUR")
	assert.Contains(t, notify.messages[0], "-11.0%")
}

func TestMonitorNoAlertBelowThreshold(t *testing.T) {
	store := newStore(t)
	notify := &MockNotifier{}
	fetch := &StubFetcher{pages: map[string]string{
		"https://shop.example.com/p1": `<html><body><p>Prix: 95,00 €</p></body></html>`,
	}}

	store.Record("p1", dec("100"), "https://shop.example.com/p1", testTime())

	m := New([]config.Product{product("p1", "https://shop.example.com/p1", "10")}, fetch, store, notify, NewMockPublisher())
	assert.NoError(t, m.Run(context.Background()))

	assert.Empty(t, notify.messages)

	// The observation is still recorded
	entry, _ := store.Get("p1")
	assert.Equal(t, "95", entry.LastPrice.String())
	assert.Equal(t, "95", entry.MinPrice.String())
}

func TestMonitorBatchesAlerts(t *testing.T) {
	store := newStore(t)
	notify := &MockNotifier{}
	fetch := &StubFetcher{pages: map[string]string{
		"https://shop.example.com/p1": `<html><body><p>Prix: 50,00 €</p></body></html>`,
		"https://shop.example.com/p2": `<html><body><p>Prix: 20,00 €</p></body></html>`,
	}}

	store.Record("p1", dec("100"), "https://shop.example.com/p1", testTime())
	store.Record("p2", dec("40"), "https://shop.example.com/p2", testTime())

	products := []config.Product{
		product("p1", "https://shop.example.com/p1", "0"),
		product("p2", "https://shop.example.com/p2", "0"),
	}
	m := New(products, fetch, store, notify, NewMockPublisher())
	assert.NoError(t, m.Run(context.Background()))

	// One delivery per run, both alerts inside
	assert.Len(t, notify.messages, 1)
	assert.Contains(t, notify.messages[0], "*Product p1*")
	assert.Contains(t, notify.messages[0], "*Product p2*")
}

func TestMonitorFetchFailureSkipsEntity(t *testing.T) {
	store := newStore(t)
	notify := &MockNotifier{}
	fetch := &StubFetcher{
		pages: map[string]string{
			"https://shop.example.com/p2": `<html><body><p>Prix: 10,00 €</p></body></html>`,
		},
		errs: map[string]error{
			"https://shop.example.com/p1": stderrors.New("connection refused"),
		},
	}

	products := []config.Product{
		product("p1", "https://shop.example.com/p1", "0"),
		product("p2", "https://shop.example.com/p2", "0"),
	}
	m := New(products, fetch, store, notify, NewMockPublisher())
	assert.NoError(t, m.Run(context.Background()))

	// The failed entity left no trace; the rest of the run continued
	_, ok := store.Get("p1")
	assert.False(t, ok)
	_, ok = store.Get("p2")
	assert.True(t, ok)
}

func TestMonitorParseFailureLeavesLedgerUntouched(t *testing.T) {
	store := newStore(t)
	fetch := &StubFetcher{pages: map[string]string{
		"https://shop.example.com/p1": `<html><body><p>nothing numeric</p></body></html>`,
	}}

	store.Record("p1", dec("100"), "https://shop.example.com/p1", testTime())

	m := New([]config.Product{product("p1", "https://shop.example.com/p1", "0")}, fetch, store, &MockNotifier{}, NewMockPublisher())
	assert.NoError(t, m.Run(context.Background()))

	entry, ok := store.Get("p1")
	assert.True(t, ok)
	assert.Equal(t, "100", entry.LastPrice.String())
}

func TestMonitorNotifierFailureIsSwallowed(t *testing.T) {
	store := newStore(t)
	notify := &MockNotifier{fail: true}
	fetch := &StubFetcher{pages: map[string]string{
		"https://shop.example.com/p1": `<html><body><p>Prix: 50,00 €</p></body></html>`,
	}}

	store.Record("p1", dec("100"), "https://shop.example.com/p1", testTime())

	m := New([]config.Product{product("p1", "https://shop.example.com/p1", "0")}, fetch, store, notify, NewMockPublisher())

	// Delivery fails, the run does not
	assert.NoError(t, m.Run(context.Background()))

	// The drop is recorded either way
	entry, _ := store.Get("p1")
	assert.Equal(t, "50", entry.LastPrice.String())
}

func TestMonitorSelectorTakesPrecedence(t *testing.T) {
	store := newStore(t)
	fetch := &StubFetcher{pages: map[string]string{
		"https://shop.example.com/p1": `<html><body>
			<span id="sale-price">42,00</span>
			<p>Prix barré : 99,00 €</p>
		</body></html>`,
	}}

	p := product("p1", "https://shop.example.com/p1", "0")
	p.PriceSelector = "#sale-price"

	m := New([]config.Product{p}, fetch, store, &MockNotifier{}, NewMockPublisher())
	assert.NoError(t, m.Run(context.Background()))

	entry, _ := store.Get("p1")
	assert.Equal(t, "42", entry.LastPrice.String())
}
