package sms

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/myschool/myschool/core"
)

type nopLogger struct{}

var _ core.Logger = nopLogger{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fakeGateway accepts everything unless told otherwise by number.
type fakeGateway struct {
	balance decimal.Decimal
	codes   map[string]int
	errs    map[string]error
	block   chan struct{} // when set, Send waits for it to close
	started chan struct{} // when set, receives once per Send call

	mu   sync.Mutex
	sent []Submission
}

var _ Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) Send(ctx context.Context, sub Submission) (int, error) {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	g.sent = append(g.sent, sub)
	g.mu.Unlock()

	if err, ok := g.errs[sub.Number]; ok {
		return 0, err
	}
	if code, ok := g.codes[sub.Number]; ok {
		return code, nil
	}
	return CodeSubmitted, nil
}

func (g *fakeGateway) Balance(context.Context) (decimal.Decimal, error) {
	return g.balance, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func (g *fakeGateway) messageTo(number string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, sub := range g.sent {
		if sub.Number == number {
			return sub.Message, true
		}
	}
	return "", false
}

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ core.KVStore = (*memKV)(nil)

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (kv *memKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	val, ok := kv.data[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return val, nil
}

func (kv *memKV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = value
	return nil
}

func (kv *memKV) Delete(_ context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.data, key)
	return nil
}

type fakeDirectory map[string]Recipient

var _ Directory = fakeDirectory(nil)

func (dir fakeDirectory) Recipients(_ context.Context, numbers []string) ([]Recipient, error) {
	recipients := make([]Recipient, len(numbers))
	for i, n := range numbers {
		if r, ok := dir[n]; ok {
			recipients[i] = r
			continue
		}
		recipients[i] = Recipient{PhoneNumber: n, Missing: true}
	}
	return recipients, nil
}

// heldDraftStore pauses the next Save after hold() until the returned func is called.
type heldDraftStore struct {
	DraftStore

	mu      sync.Mutex
	held    chan struct{}
	entered chan struct{}
}

func (s *heldDraftStore) hold() (entered <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = make(chan struct{})
	s.entered = make(chan struct{})
	held := s.held
	return s.entered, func() { close(held) }
}

func (s *heldDraftStore) Save(ctx context.Context, owner string, d Draft) error {
	s.mu.Lock()
	held, entered := s.held, s.entered
	s.held, s.entered = nil, nil
	s.mu.Unlock()

	if held != nil {
		close(entered)
		<-held
	}
	return s.DraftStore.Save(ctx, owner, d)
}
