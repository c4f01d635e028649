package boot

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/R-ARM/GamepadTools/internal/efi"
	"github.com/R-ARM/GamepadTools/internal/efivars"
	"github.com/go-logr/logr"
)

// Boot option variables are small, a kibibyte comfortably holds real-world entries
const DefaultScratchSize = 1024

// Variables sharing the Boot prefix that are not boot options
var nonOptionVariables = map[string]bool{
	"BootCurrent":       true,
	"BootNext":          true,
	"BootOptionSupport": true,
	"BootOrder":         true,
}

// Dropped records a boot variable that was left out of the catalog because it could not be decoded
type Dropped struct {
	Name string
	Err  error
}

// ScanResult is the outcome of a single pass over the variable store
type ScanResult struct {

	// The presented entries, ordered by ID
	Entries []Entry

	// The variables that failed to decode, in enumeration order
	Dropped []Dropped
}

// Catalog decodes the boot option variables of a store into presentable entries
type Catalog struct {
	store   efivars.Store
	policy  Policy
	log     logr.Logger
	scratch []byte
}

// Option configures a Catalog
type Option func(*Catalog)

// Sets the inclusion policy (the default presents every decodable entry)
func WithPolicy(policy Policy) Option {
	return func(c *Catalog) {
		c.policy = policy
	}
}

// Sets the logger used for per-variable diagnostics
func WithLogger(log logr.Logger) Option {
	return func(c *Catalog) {
		c.log = log
	}
}

// Sets the size of the buffer variables are read into, longer variables are truncated
func WithScratchSize(size int) Option {
	return func(c *Catalog) {
		if size > 0 {
			c.scratch = make([]byte, size)
		}
	}
}

// Creates a catalog over the supplied variable store
func NewCatalog(store efivars.Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:   store,
		policy:  DefaultPolicy(),
		log:     logr.Discard(),
		scratch: make([]byte, DefaultScratchSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reads and decodes every boot option variable.
// A variable that fails to decode is dropped and recorded, only a failure to enumerate the store is returned as an error.
func (c *Catalog) Scan() (*ScanResult, error) {

	names, err := c.store.ListNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list UEFI variables: %w", err)
	}

	result := &ScanResult{Entries: []Entry{}, Dropped: []Dropped{}}
	for _, name := range names {
		if !strings.HasPrefix(name, "Boot") || nonOptionVariables[name] {
			continue
		}

		entry, err := c.decode(name)
		if err != nil {
			c.log.V(1).Info("dropping boot variable", "name", name, "reason", err.Error())
			result.Dropped = append(result.Dropped, Dropped{Name: name, Err: err})
			continue
		}

		if !c.policy.Includes(entry) {
			c.log.V(1).Info("hiding fallback loader entry", "name", name, "path", entry.FilePath)
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	slices.SortStableFunc(result.Entries, func(a, b Entry) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

// Decodes a single variable. Everything kept in the returned entry is copied out of the scratch buffer.
func (c *Catalog) decode(name string) (Entry, error) {

	id, suffix, err := efi.ParseBootVariableName(name)
	if err != nil {
		return Entry{}, err
	}

	// A truncated read is decoded as-is, the decoder catches any field that no longer fits
	n, err := c.store.Read(name, c.scratch)
	if errors.Is(err, io.ErrShortBuffer) {
		c.log.V(1).Info("boot variable exceeds the scratch buffer", "name", name, "size", len(c.scratch))
	} else if err != nil {
		return Entry{}, fmt.Errorf("failed to read variable: %w", err)
	}

	option, err := efi.DecodeLoadOption(c.scratch[:n])
	if err != nil {
		return Entry{}, err
	}

	summary, err := efi.Summarize(option.FilePathList)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		ID:          id,
		RawSuffix:   suffix,
		Description: option.Description,
		PathSummary: summary.Labels,
		FilePath:    summary.FilePath,
		Attributes:  option.Attributes,
	}, nil
}
