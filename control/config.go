// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Line-oriented option loader. Values are read once at startup and handed
// to component constructors as plain parameters.

package control

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/momentics/ccio/api"
)

// Option limits.
const (
	MaxNameLen  = 31
	MaxValueLen = 255
	MaxLineLen  = 1024
)

// OptionType is the declared type of an option.
type OptionType int

const (
	OptionBool OptionType = iota
	OptionUint
	OptionString
)

func (t OptionType) String() string {
	switch t {
	case OptionBool:
		return "bool"
	case OptionUint:
		return "uint"
	default:
		return "string"
	}
}

// Option declares one setting.
type Option struct {
	Name        string
	Type        OptionType
	Default     string
	Description string
}

var defaultOptions = []Option{
	{"log_level", OptionUint, "4", "log verbosity, 0 crit .. 7 vverb"},
	{"tcp_backlog", OptionUint, "128", "listen backlog"},
	{"tcp_poolsize", OptionUint, "0", "tcp connection pool capacity, 0 is unbounded"},
	{"pipe_poolsize", OptionUint, "1", "pipe pool capacity, 0 is unbounded"},
	{"stream_poolsize", OptionUint, "0", "stream pool capacity, 0 is unbounded"},
	{"buf_size", OptionUint, "16384", "stream buffer size in bytes"},
	{"buf_poolsize", OptionUint, "0", "buffer pool capacity, 0 is unbounded"},
	{"event_nevent", OptionUint, "1024", "event loop capacity"},
	{"event_timeout", OptionUint, "100", "event wait timeout in milliseconds"},
	{"prealloc", OptionBool, "no", "construct pool entries up front"},
}

var errSkipLine = errors.New("skip line")

// Options is a typed option table with a thread-safe snapshot.
type Options struct {
	mu     sync.RWMutex
	decl   map[string]Option
	values map[string]any
}

// NewOptions creates a table from decls with every default applied.
func NewOptions(decls ...Option) (*Options, error) {
	o := &Options{
		decl:   make(map[string]Option, len(decls)),
		values: make(map[string]any, len(decls)),
	}
	for _, d := range decls {
		if !validName(d.Name) {
			return nil, fmt.Errorf("%w: bad option name %q", api.ErrInvalidArgument, d.Name)
		}
		v, err := parseValue(d.Type, d.Default)
		if err != nil {
			return nil, fmt.Errorf("option %s default: %w", d.Name, err)
		}
		o.decl[d.Name] = d
		o.values[d.Name] = v
	}
	return o, nil
}

// DefaultOptions returns the standard option table.
func DefaultOptions() *Options {
	o, err := NewOptions(defaultOptions...)
	if err != nil {
		panic(err)
	}
	return o
}

// Set parses value according to the declared type of name.
func (o *Options) Set(name, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	d, ok := o.decl[name]
	if !ok {
		return fmt.Errorf("%w: %s", api.ErrUnknownOption, name)
	}
	if len(value) > MaxValueLen {
		return fmt.Errorf("%w: value of %s exceeds %d bytes", api.ErrInvalidArgument, name, MaxValueLen)
	}
	v, err := parseValue(d.Type, value)
	if err != nil {
		return fmt.Errorf("option %s: %w", name, err)
	}
	o.values[name] = v
	return nil
}

// Load applies every option line read from r. Errors carry the line number.
func (o *Options) Load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, MaxLineLen+1), MaxLineLen+1)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		name, value, err := ParseLine(sc.Text())
		if errors.Is(err, errSkipLine) {
			continue
		}
		if err == nil {
			err = o.Set(name, value)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	return nil
}

// LoadFile opens path and loads it.
func (o *Options) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := o.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ParseLine splits a "name: value" line. Blank and comment lines return
// an error matching errSkipLine.
func ParseLine(line string) (name, value string, err error) {
	if len(line) > MaxLineLen {
		return "", "", fmt.Errorf("%w: line exceeds %d bytes", api.ErrInvalidArgument, MaxLineLen)
	}
	s := strings.TrimSpace(line)
	if s == "" || s[0] == '#' {
		return "", "", errSkipLine
	}
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return "", "", fmt.Errorf("%w: missing ':' in %q", api.ErrInvalidArgument, s)
	}
	name = strings.TrimSpace(s[:i])
	value = strings.TrimSpace(s[i+1:])
	if !validName(name) {
		return "", "", fmt.Errorf("%w: bad option name %q", api.ErrInvalidArgument, name)
	}
	if len(value) > MaxValueLen {
		return "", "", fmt.Errorf("%w: value exceeds %d bytes", api.ErrInvalidArgument, MaxValueLen)
	}
	return name, value, nil
}

func validName(name string) bool {
	if name == "" || len(name) > MaxNameLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}

func parseValue(t OptionType, s string) (any, error) {
	switch t {
	case OptionBool:
		switch strings.ToLower(s) {
		case "yes":
			return true, nil
		case "no":
			return false, nil
		}
		return nil, fmt.Errorf("%w: %q is not yes/no", api.ErrInvalidArgument, s)
	case OptionUint:
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", api.ErrInvalidArgument, err)
		}
		return v, nil
	default:
		return s, nil
	}
}

// Bool returns a boolean option; false if name is not a bool.
func (o *Options) Bool(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, _ := o.values[name].(bool)
	return v
}

// Uint returns an unsigned option; 0 if name is not a uint.
func (o *Options) Uint(name string) uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, _ := o.values[name].(uint64)
	return v
}

// Int returns Uint(name) as an int.
func (o *Options) Int(name string) int {
	return int(o.Uint(name))
}

// String returns a string option; "" if name is not a string.
func (o *Options) String(name string) string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, _ := o.values[name].(string)
	return v
}

// GetSnapshot returns a copy of all values.
func (o *Options) GetSnapshot() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]any, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// Describe writes one line per declared option.
func (o *Options) Describe(w io.Writer) error {
	o.mu.RLock()
	names := make([]string, 0, len(o.decl))
	for k := range o.decl {
		names = append(names, k)
	}
	o.mu.RUnlock()
	sort.Strings(names)
	for _, n := range names {
		d := o.decl[n]
		if _, err := fmt.Fprintf(w, "%-16s %-6s default %-6s %s\n", d.Name, d.Type, d.Default, d.Description); err != nil {
			return err
		}
	}
	return nil
}
