// Package menu implements paginated, owner-bound interactive menus.
//
// State is a pure value: transitions return a new State and never touch the
// receiver. Registry owns the live menus and their idle timers.
package menu

import (
	"errors"
	"fmt"
	"time"
)

// Direction is a navigation request.
type Direction int

const (
	Next Direction = iota + 1
	Previous
)

func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Previous:
		return "prev"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection maps "next"/"prev" back to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "next":
		return Next, true
	case "prev":
		return Previous, true
	}
	return 0, false
}

// Status is the lifecycle of a menu. It only moves from Active to Expired.
type Status int

const (
	StatusActive Status = iota
	StatusExpired
)

var (
	// ErrNotOwner is returned when someone other than the owner navigates.
	ErrNotOwner = errors.New("menu: actor does not own this menu")
	// ErrExpired is returned for any navigation after expiry.
	ErrExpired = errors.New("menu: menu has expired")
	// ErrNoPage is returned when navigating past the first or last page.
	ErrNoPage = errors.New("menu: no page in that direction")
	// ErrNoPages is returned when a menu would have nothing to show.
	ErrNoPages = errors.New("menu: menu needs at least one page")
)

// State is the navigable position of one menu.
type State struct {
	ID        string
	OwnerID   string
	Current   int
	Total     int
	Status    Status
	CreatedAt time.Time
}

// NewState returns an active menu on its first page.
func NewState(id, ownerID string, total int, now time.Time) (State, error) {
	if total < 1 {
		return State{}, ErrNoPages
	}
	return State{ID: id, OwnerID: ownerID, Total: total, CreatedAt: now}, nil
}

// Apply moves the menu one page. Ownership is checked before anything
// else; on error the returned State equals the receiver.
func (s State) Apply(actorID string, d Direction) (State, error) {
	if actorID != s.OwnerID {
		return s, ErrNotOwner
	}
	if s.Status == StatusExpired {
		return s, ErrExpired
	}
	next := s
	switch d {
	case Next:
		if s.Current >= s.Total-1 {
			return s, ErrNoPage
		}
		next.Current++
	case Previous:
		if s.Current <= 0 {
			return s, ErrNoPage
		}
		next.Current--
	default:
		return s, fmt.Errorf("menu: unknown %s", d)
	}
	return next, nil
}

// Expire marks the menu expired. Expiring twice is a no-op.
func (s State) Expire() State {
	s.Status = StatusExpired
	return s
}

// View is what a renderer needs to draw the navigation controls.
type View struct {
	Page            int
	Total           int
	Footer          string
	PreviousEnabled bool
	NextEnabled     bool
}

// Render derives the navigation controls. Expired menus show no enabled
// controls.
func (s State) Render() View {
	active := s.Status == StatusActive
	return View{
		Page:            s.Current + 1,
		Total:           s.Total,
		Footer:          fmt.Sprintf("Page %d/%d", s.Current+1, s.Total),
		PreviousEnabled: active && s.Current > 0,
		NextEnabled:     active && s.Current < s.Total-1,
	}
}

// Paginate splits items into pages of at most perPage items. The last page
// may be short; an empty input yields no pages.
func Paginate[T any](items []T, perPage int) [][]T {
	if perPage < 1 {
		perPage = 1
	}
	pages := make([][]T, 0, (len(items)+perPage-1)/perPage)
	for start := 0; start < len(items); start += perPage {
		end := min(start+perPage, len(items))
		pages = append(pages, items[start:end])
	}
	return pages
}
