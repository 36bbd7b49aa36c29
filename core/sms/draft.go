package sms

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/myschool/myschool/core"
)

var (
	ErrSendInProgress     = errors.New("a send is already in progress")
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
)

type (
	// Draft is the message an admin is composing, with the selected numbers in selection order.
	Draft struct {
		Message string   `json:"message"`
		Class   string   `json:"class,omitempty"` // class filter of the recipient picker
		Numbers []string `json:"numbers"`
	}

	// DraftView is a Draft with its live estimate.
	DraftView struct {
		Draft    Draft               `json:"draft"`
		Estimate Estimate            `json:"estimate"`
		Balance  decimal.NullDecimal `json:"balance"`
		Sending  bool                `json:"sending"`
	}

	DraftStore interface {
		// Get returns an empty Draft when owner has none.
		Get(ctx context.Context, owner string) (Draft, error)
		Save(ctx context.Context, owner string, d Draft) error
	}

	// Directory resolves phone numbers to recipients.
	Directory interface {
		// Recipients is index-aligned with numbers; unmatched numbers come back Missing.
		Recipients(ctx context.Context, numbers []string) ([]Recipient, error)
	}

	kvDraftStore struct {
		kv core.KVStore
	}
)

var _ DraftStore = (*kvDraftStore)(nil)

func NewDraftStore(kv core.KVStore) DraftStore {
	return &kvDraftStore{kv: kv}
}

func draftKey(owner string) string {
	return "sms:draft:" + owner
}

func (s *kvDraftStore) Get(ctx context.Context, owner string) (Draft, error) {
	data, err := s.kv.Get(ctx, draftKey(owner))
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return Draft{Numbers: []string{}}, nil
		}
		return Draft{}, errors.Wrap(err, "getting draft")
	}
	var d Draft
	if err = json.Unmarshal(data, &d); err != nil {
		return Draft{}, errors.Wrap(err, "decoding draft")
	}
	if d.Numbers == nil {
		d.Numbers = []string{}
	}
	return d, nil
}

func (s *kvDraftStore) Save(ctx context.Context, owner string, d Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "encoding draft")
	}
	return errors.Wrap(s.kv.Set(ctx, draftKey(owner), data), "saving draft")
}

// Desk is the compose-and-send workflow of each admin.
// While a send is in flight for an owner, their draft cannot be changed or sent again.
type Desk struct {
	svc    Service
	drafts DraftStore
	dir    Directory

	mu      sync.Mutex
	sending map[string]bool
	edits   map[string]*sync.Mutex // per owner; held while a draft is read, changed and saved
}

func NewDesk(svc Service, drafts DraftStore, dir Directory) *Desk {
	return &Desk{
		svc:     svc,
		drafts:  drafts,
		dir:     dir,
		sending: make(map[string]bool),
		edits:   make(map[string]*sync.Mutex),
	}
}

func (d *Desk) editLock(owner string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.edits[owner]
	if !ok {
		l = new(sync.Mutex)
		d.edits[owner] = l
	}
	return l
}

func (d *Desk) isSending(owner string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sending[owner]
}

func (d *Desk) acquire(owner string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sending[owner] {
		return false
	}
	d.sending[owner] = true
	return true
}

func (d *Desk) release(owner string) {
	d.mu.Lock()
	delete(d.sending, owner)
	d.mu.Unlock()
}

func (d *Desk) view(ctx context.Context, owner string, draft Draft) (DraftView, error) {
	recipients, err := d.dir.Recipients(ctx, draft.Numbers)
	if err != nil {
		return DraftView{}, errors.Wrap(err, "resolving recipients")
	}
	return DraftView{
		Draft:    draft,
		Estimate: d.svc.Estimate(draft.Message, recipients),
		Balance:  d.svc.Balance(),
		Sending:  d.isSending(owner),
	}, nil
}

func (d *Desk) Get(ctx context.Context, owner string) (DraftView, error) {
	draft, err := d.drafts.Get(ctx, owner)
	if err != nil {
		return DraftView{}, err
	}
	return d.view(ctx, owner, draft)
}

// Estimate prices message for numbers without touching any draft.
func (d *Desk) Estimate(ctx context.Context, message string, numbers []string) (Estimate, error) {
	recipients, err := d.dir.Recipients(ctx, cleanNumbers(numbers))
	if err != nil {
		return Estimate{}, errors.Wrap(err, "resolving recipients")
	}
	return d.svc.Estimate(message, recipients), nil
}

// Update replaces owner's draft and returns its fresh estimate.
func (d *Desk) Update(ctx context.Context, owner string, draft Draft) (DraftView, error) {
	draft.Class = core.CleanString(draft.Class)
	draft.Numbers = cleanNumbers(draft.Numbers)

	l := d.editLock(owner)
	l.Lock()
	if d.isSending(owner) {
		l.Unlock()
		return DraftView{}, ErrSendInProgress
	}
	err := d.drafts.Save(ctx, owner, draft)
	l.Unlock()
	if err != nil {
		return DraftView{}, err
	}
	return d.view(ctx, owner, draft)
}

// InsertPlaceholder appends key and a space to owner's message.
func (d *Desk) InsertPlaceholder(ctx context.Context, owner, key string) (DraftView, error) {
	if !IsPlaceholder(key) {
		return DraftView{}, core.NewValidationError(ErrUnknownPlaceholder, core.FieldError{Field: "key", Error: ErrUnknownPlaceholder.Error()})
	}

	l := d.editLock(owner)
	l.Lock()
	if d.isSending(owner) {
		l.Unlock()
		return DraftView{}, ErrSendInProgress
	}
	draft, err := d.drafts.Get(ctx, owner)
	if err == nil {
		draft.Message += key + " "
		err = d.drafts.Save(ctx, owner, draft)
	}
	l.Unlock()
	if err != nil {
		return DraftView{}, err
	}
	return d.view(ctx, owner, draft)
}

// Send transmits owner's draft. On full success the message and the selection are cleared.
// Edits already saving finish before the draft is read; later ones fail until the send is over.
func (d *Desk) Send(ctx context.Context, owner string) (*Report, error) {
	l := d.editLock(owner)
	l.Lock()
	acquired := d.acquire(owner)
	l.Unlock()
	if !acquired {
		return nil, ErrSendInProgress
	}
	defer d.release(owner)

	draft, err := d.drafts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	recipients, err := d.dir.Recipients(ctx, draft.Numbers)
	if err != nil {
		return nil, errors.Wrap(err, "resolving recipients")
	}

	report, err := d.svc.Send(ctx, draft.Message, recipients)
	if err != nil {
		return nil, err
	}
	if report.OK() {
		draft.Message = ""
		draft.Numbers = []string{}
		if err = d.drafts.Save(ctx, owner, draft); err != nil {
			return report, err
		}
	}
	return report, nil
}

// cleanNumbers normalizes numbers and drops blanks and repeats, keeping selection order.
func cleanNumbers(numbers []string) []string {
	cleaned := make([]string, 0, len(numbers))
	seen := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		n = core.CleanNumber(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		cleaned = append(cleaned, n)
	}
	return cleaned
}
