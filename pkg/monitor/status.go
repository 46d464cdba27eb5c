package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/quotawatch/quotawatch/pkg/adapter"
	"github.com/quotawatch/quotawatch/pkg/predict"
)

// AccountStatus is the latest presentation-ready state for one account.
type AccountStatus struct {
	AccountID   string              `json:"account_id"`
	Platform    string              `json:"platform"`
	DisplayName string              `json:"display_name"`
	Fetch       adapter.FetchResult `json:"fetch"`
	Prediction  predict.Result      `json:"prediction"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// StatusBoard is the in-process presentation consumer: it retains the latest
// FetchResult and PredictionResult per account for the HTTP and MCP surfaces.
type StatusBoard struct {
	mu     sync.RWMutex
	status map[string]*AccountStatus
}

// NewStatusBoard creates an empty board.
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{status: make(map[string]*AccountStatus)}
}

func (b *StatusBoard) OnFetchResult(a adapter.Adapter, res adapter.FetchResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.entryLocked(a)
	st.Fetch = res
	st.UpdatedAt = time.Now()
}

func (b *StatusBoard) OnPrediction(a adapter.Adapter, p predict.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.entryLocked(a)
	st.Prediction = p
	st.UpdatedAt = time.Now()
}

// Get returns the latest status for one account.
func (b *StatusBoard) Get(accountID string) (AccountStatus, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st, ok := b.status[accountID]
	if !ok {
		return AccountStatus{}, false
	}
	return *st, true
}

// All returns every account's latest status, ordered by account id.
func (b *StatusBoard) All() []AccountStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]AccountStatus, 0, len(b.status))
	for _, st := range b.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

// Forget drops the retained status for an account, e.g. after deletion.
func (b *StatusBoard) Forget(accountID string) {
	b.mu.Lock()
	delete(b.status, accountID)
	b.mu.Unlock()
}

func (b *StatusBoard) entryLocked(a adapter.Adapter) *AccountStatus {
	st, ok := b.status[a.ID()]
	if !ok {
		st = &AccountStatus{AccountID: a.ID()}
		b.status[a.ID()] = st
	}
	st.Platform = a.PlatformType()
	st.DisplayName = a.DisplayName()
	return st
}
