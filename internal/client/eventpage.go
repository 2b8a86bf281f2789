package client

import (
	"context"
	"errors"
	"sync"

	"github.com/potluck-app/potluck/internal/category"
	"github.com/potluck-app/potluck/internal/dinner"
	"github.com/potluck-app/potluck/internal/guest"
	"github.com/potluck-app/potluck/internal/item"
)

// State is the lifecycle of an event page.
type State int

const (
	StateLoading State = iota
	StateFound
	StateNotFound
)

// Snapshot is the event page's current view of one dinner. Me is nil for
// anonymous viewers.
type Snapshot struct {
	Dinner     *dinner.DinnerResponse
	Guests     []*guest.GuestResponse
	Categories []*category.CategoryResponse
	Items      []*item.ItemResponse
	Me         *guest.GuestResponse
}

// EventPage loads a dinner's full state by share code, resolves this device's
// identity, and keeps the snapshot fresh by re-fetching a collection whenever
// the server signals it changed. After Close, late fetch results are discarded.
type EventPage struct {
	gw        *Gateway
	sessions  *SessionStore
	shareCode string

	mu     sync.RWMutex
	state  State
	snap   Snapshot
	closed bool

	sub *Subscription
}

// NewEventPage creates a controller for one dinner page. Call Load before
// reading the snapshot.
func NewEventPage(gw *Gateway, sessions *SessionStore, shareCode string) *EventPage {
	return &EventPage{
		gw:        gw,
		sessions:  sessions,
		shareCode: shareCode,
		state:     StateLoading,
	}
}

// State returns the page's lifecycle state.
func (p *EventPage) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Snapshot returns the current view. Valid once State is StateFound.
func (p *EventPage) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Load resolves the dinner and fetches guests, categories, items, and this
// device's identity concurrently. A missing dinner moves the page to
// StateNotFound without error; any other failure is returned and the page
// stays in StateLoading.
func (p *EventPage) Load(ctx context.Context) error {
	d, err := p.gw.GetDinner(ctx, p.shareCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			p.mu.Lock()
			if !p.closed {
				p.state = StateNotFound
			}
			p.mu.Unlock()
			return nil
		}
		return err
	}

	var (
		wg         sync.WaitGroup
		guests     []*guest.GuestResponse
		categories []*category.CategoryResponse
		items      []*item.ItemResponse
		me         *guest.GuestResponse

		guestsErr, categoriesErr, itemsErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		guests, guestsErr = p.gw.ListGuests(ctx, p.shareCode)
	}()
	go func() {
		defer wg.Done()
		categories, categoriesErr = p.gw.ListCategories(ctx, p.shareCode)
	}()
	go func() {
		defer wg.Done()
		items, itemsErr = p.gw.ListItems(ctx, p.shareCode)
	}()

	if token, ok := p.sessions.Get(p.shareCode); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolved, err := p.gw.Me(ctx, p.shareCode, token)
			if err == nil {
				me = resolved
			}
			// A stale token resolves to nothing; the viewer is anonymous.
		}()
	}

	wg.Wait()

	for _, err := range []error{guestsErr, categoriesErr, itemsErr} {
		if err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.state = StateFound
	p.snap = Snapshot{
		Dinner:     d,
		Guests:     guests,
		Categories: categories,
		Items:      items,
		Me:         me,
	}
	return nil
}

// Watch subscribes to the dinner's change feed and re-fetches the affected
// collection on each event, replacing that slice of the snapshot. It blocks
// until ctx is done, Close is called, or the server drops the feed, which is
// reported as ErrSubscriptionLost. Re-fetch failures are skipped; the next
// event for the same collection repairs the view.
func (p *EventPage) Watch(ctx context.Context) error {
	sub, err := p.gw.Subscribe(ctx, p.shareCode)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		sub.Close()
		return nil
	}
	p.sub = sub
	p.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			sub.Close()
			return ctx.Err()
		case event, ok := <-sub.Events():
			if !ok {
				p.mu.RLock()
				closed := p.closed
				p.mu.RUnlock()
				if closed {
					return nil
				}
				return ErrSubscriptionLost
			}
			p.refresh(ctx, event.Collection)
		}
	}
}

func (p *EventPage) refresh(ctx context.Context, collection string) {
	switch collection {
	case "guests":
		guests, err := p.gw.ListGuests(ctx, p.shareCode)
		if err != nil {
			return
		}
		p.mu.Lock()
		if !p.closed {
			p.snap.Guests = guests
		}
		p.mu.Unlock()
	case "categories":
		categories, err := p.gw.ListCategories(ctx, p.shareCode)
		if err != nil {
			return
		}
		p.mu.Lock()
		if !p.closed {
			p.snap.Categories = categories
		}
		p.mu.Unlock()
	case "items":
		items, err := p.gw.ListItems(ctx, p.shareCode)
		if err != nil {
			return
		}
		p.mu.Lock()
		if !p.closed {
			p.snap.Items = items
		}
		p.mu.Unlock()
	}
}

// Close tears the page down. In-flight loads and refreshes finish but their
// results are discarded.
func (p *EventPage) Close() {
	p.mu.Lock()
	p.closed = true
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}
