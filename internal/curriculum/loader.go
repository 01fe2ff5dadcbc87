package curriculum

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed banks/*.yaml
var embeddedBanks embed.FS

// Loader loads and caches static quiz banks.
type Loader struct {
	banks []Bank // sorted by priority
	byID  map[string]Bank
	mu    sync.RWMutex
}

// NewLoader loads the banks compiled into the binary.
func NewLoader() (*Loader, error) {
	sub, err := fs.Sub(embeddedBanks, "banks")
	if err != nil {
		return nil, fmt.Errorf("opening embedded banks: %w", err)
	}
	return NewLoaderFS(sub)
}

// NewLoaderFS loads every *.yaml bank found in fsys.
func NewLoaderFS(fsys fs.FS) (*Loader, error) {
	l := &Loader{byID: make(map[string]Bank)}

	if err := l.loadAll(fsys); err != nil {
		return nil, fmt.Errorf("loading quiz banks: %w", err)
	}

	slog.Info("quiz banks loaded", "banks", len(l.banks))
	return l, nil
}

// Bank returns a bank by ID.
func (l *Loader) Bank(id string) (Bank, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.byID[id]
	return b, ok
}

// Banks returns all loaded banks in classification order.
func (l *Loader) Banks() []Bank {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Bank(nil), l.banks...)
}

// Classify returns the first bank, in priority order, with a keyword that
// occurs in topic. Matching is a case-insensitive substring test.
func (l *Loader) Classify(topic string) (Bank, bool) {
	lower := cases.Lower(language.Und).String(topic)

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, b := range l.banks {
		for _, kw := range b.Keywords {
			if strings.Contains(lower, kw) {
				return b, true
			}
		}
	}
	return Bank{}, false
}

func (l *Loader) loadAll(fsys fs.FS) error {
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch path.Ext(p) {
		case ".yaml", ".yml":
			return l.loadBank(fsys, p)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.mu.Lock()
	sort.SliceStable(l.banks, func(i, j int) bool { return l.banks[i].Priority < l.banks[j].Priority })
	l.mu.Unlock()
	return nil
}

func (l *Loader) loadBank(fsys fs.FS, p string) error {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return err
	}

	var bank Bank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	if bank.ID == "" {
		slog.Warn("skipping quiz bank without id", "path", p)
		return nil
	}
	if err := validateBank(bank); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}

	lower := cases.Lower(language.Und)
	for i, kw := range bank.Keywords {
		bank.Keywords[i] = lower.String(kw)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.byID[bank.ID]; dup {
		return fmt.Errorf("%s: duplicate bank id %q", p, bank.ID)
	}
	l.byID[bank.ID] = bank
	l.banks = append(l.banks, bank)
	return nil
}

func validateBank(b Bank) error {
	if len(b.Keywords) == 0 {
		return fmt.Errorf("bank %q has no keywords", b.ID)
	}
	if len(b.Questions) == 0 {
		return fmt.Errorf("bank %q has no questions", b.ID)
	}
	for i, q := range b.Questions {
		if q.ID != i+1 {
			return fmt.Errorf("bank %q: question %d has id %d", b.ID, i+1, q.ID)
		}
		if err := q.Validate(); err != nil {
			return fmt.Errorf("bank %q: %w", b.ID, err)
		}
	}
	return nil
}
