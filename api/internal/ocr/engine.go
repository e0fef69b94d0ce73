package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Engine extracts text from image bytes using an external provider.
type Engine interface {
	Name() string
	Extract(ctx context.Context, img []byte) (Result, error)
}

// Result of a text extraction. A blank Text is the "no text found" outcome, not an error.
type Result struct {
	Text string
}

func (r Result) Empty() bool { return strings.TrimSpace(r.Text) == "" }

// Engines holds the configured providers keyed by name.
type Engines struct {
	m map[string]Engine
}

func NewEngines(engs ...Engine) *Engines {
	e := &Engines{m: make(map[string]Engine, len(engs))}
	for _, eng := range engs {
		if eng != nil {
			e.m[eng.Name()] = eng
		}
	}
	return e
}

func (e *Engines) GetEngine(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if eng, ok := e.m[name]; ok {
		return eng, nil
	}
	return nil, fmt.Errorf("unknown ocr provider %q; use %s", name, strings.Join(e.Names(), " | "))
}

func (e *Engines) Names() []string {
	out := make([]string, 0, len(e.m))
	for n := range e.m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
