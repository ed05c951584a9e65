package category

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/slices"

	"github.com/GustavoCaso/gastos/internal/logger"
)

// Fallback is assigned to anything that cannot be matched to a known category.
const Fallback = "Otros"

var base = []string{"Comida", "Transporte", "Hogar", "Entretenimiento", "Salud", Fallback}

var aliases = map[string]string{
	"Comida":          "Comida",
	"Alimentacion":    "Comida",
	"Alimentación":    "Comida",
	"Transporte":      "Transporte",
	"Hogar":           "Hogar",
	"Entretenimiento": "Entretenimiento",
	"Salud":           "Salud",
	"Otros":           Fallback,
}

var ErrEmptyName = errors.New("category name is empty")

// Base returns the fixed categories that are always available.
func Base() []string {
	return slices.Clone(base)
}

// IsBase reports whether name is one of the fixed categories.
func IsBase(name string) bool {
	return slices.Contains(base, name)
}

// Alias returns the canonical category for a known alternative spelling.
func Alias(name string) (string, bool) {
	canonical, ok := aliases[name]
	return canonical, ok
}

type Set map[string]struct{}

func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Registry merges the base categories with the user extras stored as a JSON
// array in a side file.
type Registry struct {
	path   string
	logger *logger.Logger
}

func NewRegistry(path string, logger *logger.Logger) *Registry {
	return &Registry{
		path:   path,
		logger: logger.With("component", "categories"),
	}
}

// Load returns the sorted union of base and extra categories. Problems with
// the extras file are logged and the extras are treated as empty.
func (r *Registry) Load() []string {
	set := NewSet(base...)

	for _, extra := range r.extras() {
		set[extra] = struct{}{}
	}

	return set.Sorted()
}

func (r *Registry) Set() Set {
	return NewSet(r.Load()...)
}

func (r *Registry) extras() []string {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Debug("unable to read extra categories", "path", r.path, "error", err)
		}
		return nil
	}

	var raw []any
	if err = json.Unmarshal(data, &raw); err != nil {
		r.logger.Debug("ignoring malformed extra categories", "path", r.path, "error", err)
		return nil
	}

	extras := make([]string, 0, len(raw))
	for _, value := range raw {
		if value == nil {
			continue
		}
		name := strings.TrimSpace(fmt.Sprint(value))
		if name != "" {
			extras = append(extras, name)
		}
	}

	return extras
}

// Save persists every category that is not part of the base set.
func (r *Registry) Save(categories []string) error {
	set := NewSet(categories...)
	for _, name := range base {
		delete(set, name)
	}
	extras := set.Sorted()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(extras); err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	if err := os.WriteFile(r.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write categories file %s: %w", r.path, err)
	}

	r.logger.Debug("saved extra categories", "count", len(extras))

	return nil
}

// Add registers a new category. The first letter is upper-cased, the rest is
// kept as typed. It returns the updated sorted list.
func (r *Registry) Add(name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	first, size := utf8.DecodeRuneInString(name)
	name = string(unicode.ToUpper(first)) + name[size:]

	categories := NewSet(r.Load()...)
	categories[name] = struct{}{}

	sorted := categories.Sorted()
	if err := r.Save(sorted); err != nil {
		return nil, err
	}

	return sorted, nil
}
