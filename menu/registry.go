package menu

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the idle time after which a menu expires.
const DefaultTimeout = 60 * time.Second

// ExpiredRetention is how long an expired menu's owner is remembered so that
// late button presses are still checked for ownership first.
const ExpiredRetention = 15 * time.Minute

// Menu is a live menu and the content of its pages.
type Menu[P any] struct {
	State State
	Pages []P
}

// Page returns the content of the current page.
func (m Menu[P]) Page() P {
	return m.Pages[m.State.Current]
}

type stopper interface {
	Stop() bool
}

type entry[P any] struct {
	menu  Menu[P]
	timer stopper
	gen   uint64
}

type tombstone struct {
	ownerID string
	timer   stopper
}

// Registry holds live menus keyed by ID and expires them after an idle
// timeout.
type Registry[P any] struct {
	mu       sync.Mutex
	menus    map[string]*entry[P]
	expired  map[string]*tombstone
	timeout  time.Duration
	onExpire func(Menu[P])
	now      func() time.Time
	after    func(time.Duration, func()) stopper
	newID    func() string
}

// NewRegistry returns an empty registry. onExpire, when set, runs on its
// own goroutine after a menu has expired and been removed.
func NewRegistry[P any](timeout time.Duration, onExpire func(Menu[P])) *Registry[P] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Registry[P]{
		menus:    make(map[string]*entry[P]),
		expired:  make(map[string]*tombstone),
		timeout:  timeout,
		onExpire: onExpire,
		now:      time.Now,
		after: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		newID: func() string { return uuid.NewString() },
	}
}

// Open registers a new menu owned by ownerID and starts its idle timer.
func (r *Registry[P]) Open(ownerID string, pages []P) (Menu[P], error) {
	st, err := NewState(r.newID(), ownerID, len(pages), r.now())
	if err != nil {
		return Menu[P]{}, err
	}
	m := Menu[P]{State: st, Pages: pages}

	r.mu.Lock()
	defer r.mu.Unlock()
	e := &entry[P]{menu: m}
	r.menus[st.ID] = e
	r.arm(st.ID, e)
	return m, nil
}

// Navigate applies a transition to menu id. A recently expired menu reports
// ErrNotOwner to anyone but its owner and ErrExpired otherwise; an unknown
// id reports ErrExpired. Successful navigation restarts the idle timer.
func (r *Registry[P]) Navigate(id, actorID string, d Direction) (Menu[P], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.menus[id]
	if !ok {
		if t, ok := r.expired[id]; ok && t.ownerID != actorID {
			return Menu[P]{}, ErrNotOwner
		}
		return Menu[P]{}, ErrExpired
	}
	st, err := e.menu.State.Apply(actorID, d)
	if err != nil {
		return e.menu, err
	}
	e.menu.State = st
	r.arm(id, e)
	return e.menu, nil
}

// Get returns the live menu with the given id.
func (r *Registry[P]) Get(id string) (Menu[P], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.menus[id]
	if !ok {
		return Menu[P]{}, false
	}
	return e.menu, true
}

// Discard removes a menu without running the expiry hook.
func (r *Registry[P]) Discard(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.menus[id]; ok {
		e.timer.Stop()
		delete(r.menus, id)
	}
	r.forget(id)
}

// Close stops every timer and forgets all menus.
func (r *Registry[P]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.menus {
		e.timer.Stop()
		delete(r.menus, id)
	}
	for id := range r.expired {
		r.forget(id)
	}
}

// Len returns the number of live menus. Expired menus are not counted.
func (r *Registry[P]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.menus)
}

// arm (re)starts the idle timer. Callers hold r.mu.
func (r *Registry[P]) arm(id string, e *entry[P]) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.timer = r.after(r.timeout, func() { r.expire(id, gen) })
}

func (r *Registry[P]) expire(id string, gen uint64) {
	r.mu.Lock()
	e, ok := r.menus[id]
	if !ok || e.gen != gen {
		// Discarded, or re-armed after this timer was already running.
		r.mu.Unlock()
		return
	}
	delete(r.menus, id)
	e.menu.State = e.menu.State.Expire()
	m := e.menu
	t := &tombstone{ownerID: m.State.OwnerID}
	r.expired[id] = t
	t.timer = r.after(ExpiredRetention, func() { r.reap(id, t) })
	r.mu.Unlock()

	if r.onExpire != nil {
		r.onExpire(m)
	}
}

func (r *Registry[P]) reap(id string, t *tombstone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.expired[id] == t {
		delete(r.expired, id)
	}
}

// forget drops the tombstone for id. Callers hold r.mu.
func (r *Registry[P]) forget(id string) {
	if t, ok := r.expired[id]; ok {
		t.timer.Stop()
		delete(r.expired, id)
	}
}
