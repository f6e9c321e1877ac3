package plugins

import (
	"fmt"
	goplugin "plugin"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultModuleExt is appended to class path files that have no extension
const DefaultModuleExt = ".so"

// ClassPath is a parsed <filesystem-path>.<Symbol> plugin entry
type ClassPath struct {
	// Entry is the configured string
	Entry string
	// Path is the module file, with DefaultModuleExt added when missing
	Path string
	// Symbol names the exported factory inside the module
	Symbol string
	// ModuleName is derived from the file name and used to identify the module
	ModuleName string
}

// ParseClassPath splits entry on its last dot into a module path and a
// symbol name.
func ParseClassPath(entry string) (ClassPath, error) {
	entry = strings.TrimSpace(entry)
	idx := strings.LastIndex(entry, ".")
	if idx <= 0 || idx == len(entry)-1 {
		return ClassPath{}, fmt.Errorf("%w: %q (want <path>.<Symbol>)", ErrInvalidClassPath, entry)
	}

	path, symbol := entry[:idx], entry[idx+1:]
	if !isIdentifier(symbol) {
		return ClassPath{}, fmt.Errorf("%w: %q has invalid symbol %q", ErrInvalidClassPath, entry, symbol)
	}
	if filepath.Ext(path) == "" {
		path += DefaultModuleExt
	}

	return ClassPath{
		Entry:      entry,
		Path:       path,
		Symbol:     symbol,
		ModuleName: moduleName(path),
	}, nil
}

func (cp ClassPath) String() string {
	return cp.Entry
}

// moduleName derives a module identifier from a module file name
func moduleName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return "plugin_" + strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, base)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// ModuleLoader turns a class path into a plugin factory
type ModuleLoader interface {
	Load(cp ClassPath) (Factory, error)
}

// SharedObjectLoader loads Go plugin modules (go build -buildmode=plugin).
// The symbol must be an exported Factory variable or a function with the
// Factory signature.
type SharedObjectLoader struct{}

// Load implements ModuleLoader
func (SharedObjectLoader) Load(cp ClassPath) (Factory, error) {
	module, err := goplugin.Open(cp.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open module %s: %w", cp.ModuleName, err)
	}

	sym, err := module.Lookup(cp.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s in module %s: %w", cp.Symbol, cp.ModuleName, err)
	}

	return factoryFromSymbol(cp, sym)
}

func factoryFromSymbol(cp ClassPath, sym interface{}) (Factory, error) {
	var factory Factory
	switch f := sym.(type) {
	case Factory:
		factory = f
	case func(*Host) (Plugin, error):
		factory = f
	case *Factory:
		if f != nil {
			factory = *f
		}
	case *func(*Host) (Plugin, error):
		if f != nil {
			factory = *f
		}
	default:
		return nil, fmt.Errorf("symbol %s in module %s has type %T, want plugins.Factory", cp.Symbol, cp.ModuleName, sym)
	}

	if factory == nil {
		return nil, fmt.Errorf("symbol %s in module %s is a nil factory", cp.Symbol, cp.ModuleName)
	}
	return factory, nil
}
