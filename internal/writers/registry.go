// internal/writers/registry.go
package writers

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"syscall"

	"fusionsite/internal/pretty"
)

// Options tune presentation. Color only matters to the text writer and is
// further limited by what the destination terminal supports.
type Options struct {
	Color bool
	Map   pretty.Options
}

// Func writes one payload (a pkg/api value or slice of them).
type Func func(w io.Writer, payload any, o Options) error

var (
	mu       sync.RWMutex
	registry = map[string]Func{}
)

// Register installs fn for format (idempotent last-wins). Built-in formats
// register themselves in init blocks.
func Register(format string, fn Func) {
	mu.Lock()
	registry[strings.ToLower(format)] = fn
	mu.Unlock()
}

// Formats lists the registered format names.
func Formats() []string {
	mu.RLock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	mu.RUnlock()
	sort.Strings(out)
	return out
}

// Write dispatches payload to the writer registered for format.
func Write(format string, w io.Writer, payload any, o Options) error {
	mu.RLock()
	fn, ok := registry[strings.ToLower(format)]
	mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown output format %q (have %s)", format, strings.Join(Formats(), ", "))
	}
	return fn(w, payload, o)
}

// IsBrokenPipe reports whether an error is a broken pipe / closed pipe.
// Useful when downstream consumers (like `head`) close early.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
