package status

import (
	"strconv"
	"sync/atomic"
	"unicode/utf8"
)

// MaxLabelLen bounds stored labels in bytes
const MaxLabelLen = 32

// Label holds a short text metric such as a backend name or a listen address
// The zero value reads ""
type Label struct {
	ptr atomic.Pointer[string]
}

// Store sets the label, cutting it at the last rune boundary within MaxLabelLen
func (l *Label) Store(val string) {
	if len(val) > MaxLabelLen {
		cut := MaxLabelLen
		for cut > 0 && !utf8.RuneStart(val[cut]) {
			cut--
		}
		val = val[:cut]
	}
	l.ptr.Store(&val)
}

// StoreGeometry records a width x height pair as "WxH"
func (l *Label) StoreGeometry(width, height int) {
	l.Store(strconv.Itoa(width) + "x" + strconv.Itoa(height))
}

// Load returns the current label
func (l *Label) Load() string {
	if p := l.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
