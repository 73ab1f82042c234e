/*
Package ledger implements the durable feedback ledger.

The ledger stores one vote per (user, product) pair. A vote is Like (+1) or
Dislike (-1); clearing a vote deletes its row, so None (0) is never persisted.
Every mutation reads the whole backing table, changes it in memory and writes the
whole table back. This is safe for a single writer only.

Rows keep their insertion position: updating a vote rewrites the row in place.
User and product ids are compared with surrounding whitespace removed, both for
caller arguments and for stored rows.
*/
package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/khanglvm/reco-hub/internal/logging"
)

// Vote is the feedback value of a (user, product) pair.
type Vote int

const (
	Dislike Vote = -1
	None    Vote = 0
	Like    Vote = 1
)

// ErrInvalidVote is returned for values outside {-1, 0, 1} or a toggle
// direction that is not Like or Dislike.
var ErrInvalidVote = errors.New("invalid vote")

func (v Vote) String() string {
	switch v {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	case None:
		return "none"
	default:
		return "vote(" + strconv.Itoa(int(v)) + ")"
	}
}

// Valid reports whether v is one of the three vote values.
func (v Vote) Valid() bool {
	return v == Like || v == Dislike || v == None
}

// ParseVote accepts like/up/+1/1, dislike/down/-1 and clear/none/0.
func ParseVote(s string) (Vote, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like", "up", "+1", "1":
		return Like, nil
	case "dislike", "down", "-1":
		return Dislike, nil
	case "clear", "none", "0":
		return None, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrInvalidVote, s)
	}
}

// Entry is one persisted feedback row.
type Entry struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Vote      Vote   `json:"feedback"`
}

// Table is a backing store that is always read and written whole.
// Load on a store that does not exist yet returns no entries and no error.
type Table interface {
	Load() ([]Entry, error)
	Save(entries []Entry) error
}

// Ledger enforces at most one row per (user, product) pair over a Table.
type Ledger struct {
	table Table
}

// New creates a ledger over table.
func New(table Table) *Ledger {
	return &Ledger{table: table}
}

// GetVote returns the current vote of user for product, None when absent.
func (l *Ledger) GetVote(user, product string) (Vote, error) {
	user, product = normalizeID(user), normalizeID(product)
	entries, err := l.load()
	if err != nil {
		return None, err
	}
	if i := find(entries, user, product); i >= 0 {
		return entries[i].Vote, nil
	}
	return None, nil
}

// SetVote stores vote for the pair. None deletes the row; otherwise an
// existing row is updated in place and a missing one is appended.
func (l *Ledger) SetVote(user, product string, vote Vote) error {
	if !vote.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidVote, int(vote))
	}
	user, product = normalizeID(user), normalizeID(product)
	return l.mutate(func(entries []Entry) []Entry {
		return apply(entries, user, product, vote)
	})
}

// Toggle clears the vote when it already equals direction and sets it to
// direction otherwise. It returns the vote now stored.
func (l *Ledger) Toggle(user, product string, direction Vote) (Vote, error) {
	if direction != Like && direction != Dislike {
		return None, fmt.Errorf("%w: toggle direction %s", ErrInvalidVote, direction)
	}

	user, product = normalizeID(user), normalizeID(product)
	next := direction
	err := l.mutate(func(entries []Entry) []Entry {
		if i := find(entries, user, product); i >= 0 && entries[i].Vote == direction {
			next = None
		}
		return apply(entries, user, product, next)
	})
	if err != nil {
		return None, err
	}
	return next, nil
}

// ListForUser returns the user's rows in ledger order.
func (l *Ledger) ListForUser(user string) ([]Entry, error) {
	user = normalizeID(user)
	entries, err := l.load()
	if err != nil {
		return nil, err
	}
	return forUser(entries, user), nil
}

// RecentForUser returns the last n rows of ListForUser.
func (l *Ledger) RecentForUser(user string, n int) ([]Entry, error) {
	entries, err := l.ListForUser(user)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// All returns every row in ledger order.
func (l *Ledger) All() ([]Entry, error) {
	return l.load()
}

func (l *Ledger) load() ([]Entry, error) {
	entries, err := l.table.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	for i := range entries {
		entries[i].UserID = normalizeID(entries[i].UserID)
		entries[i].ProductID = normalizeID(entries[i].ProductID)
	}
	return dedupe(entries), nil
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

func (l *Ledger) mutate(fn func([]Entry) []Entry) error {
	entries, err := l.load()
	if err != nil {
		return err
	}
	if err := l.table.Save(fn(entries)); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

func apply(entries []Entry, user, product string, vote Vote) []Entry {
	i := find(entries, user, product)
	switch {
	case vote == None && i >= 0:
		return append(entries[:i], entries[i+1:]...)
	case vote == None:
		return entries
	case i >= 0:
		entries[i].Vote = vote
		return entries
	default:
		return append(entries, Entry{UserID: user, ProductID: product, Vote: vote})
	}
}

func find(entries []Entry, user, product string) int {
	for i, e := range entries {
		if e.UserID == user && e.ProductID == product {
			return i
		}
	}
	return -1
}

func forUser(entries []Entry, user string) []Entry {
	out := []Entry{}
	for _, e := range entries {
		if e.UserID == user {
			out = append(out, e)
		}
	}
	return out
}

// dedupe keeps the first row of each pair. Duplicates only appear in
// hand-edited stores; they disappear on the next write.
func dedupe(entries []Entry) []Entry {
	type pair struct{ user, product string }
	seen := make(map[pair]bool, len(entries))
	out := entries[:0:0]
	for _, e := range entries {
		k := pair{e.UserID, e.ProductID}
		if seen[k] {
			logging.Warn().
				Str("user", e.UserID).
				Str("product", e.ProductID).
				Msg("duplicate feedback row ignored")
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
