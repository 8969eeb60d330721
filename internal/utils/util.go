package utils

import (
	"strings"
	"sync"
	"time"

	"github.com/rivo/uniseg"
)

// GraphemeCount returns the number of grapheme clusters in s. Cursor
// offsets count clusters so that combining sequences and emoji move as
// single units.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// GraphemeSplit slices s at the given grapheme offset, clamping to the
// content length. It returns the text before and after the split point.
func GraphemeSplit(s string, offset int) (string, string) {
	if offset <= 0 {
		return "", s
	}
	g := uniseg.NewGraphemes(s)
	count := 0
	for g.Next() {
		count++
		if count == offset {
			_, end := g.Positions()
			return s[:end], s[end:]
		}
	}
	return s, "" // Offset beyond content; clamp to end
}

// GraphemeSlice returns the substring covering grapheme clusters [from, to).
func GraphemeSlice(s string, from, to int) string {
	head, _ := GraphemeSplit(s, to)
	_, out := GraphemeSplit(head, from)
	return out
}

// ClampOffset clamps a grapheme offset into the valid range for s.
func ClampOffset(s string, offset int) int {
	if offset < 0 {
		return 0
	}
	if n := GraphemeCount(s); offset > n {
		return n
	}
	return offset
}

// CollapseSpace trims and collapses runs of whitespace to single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Debouncer coalesces rapid calls into one deferred invocation. It owns a
// single timer slot; each Debounce call cancels any pending one.
type Debouncer struct {
	mutex sync.Mutex
	timer *time.Timer
}

// Debounce schedules fn after duration, canceling any previous pending call.
func (d *Debouncer) Debounce(duration time.Duration, fn func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(duration, func() {
		d.mutex.Lock()
		d.timer = nil
		d.mutex.Unlock()
		fn()
	})
}

// Cancel stops any pending invocation without running it.
func (d *Debouncer) Cancel() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a deferred invocation is outstanding.
func (d *Debouncer) Pending() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.timer != nil
}
