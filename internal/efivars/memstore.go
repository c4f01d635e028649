package efivars

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
)

// Variable is a single UEFI variable held in memory
type Variable struct {
	Name       string
	GUID       uuid.UUID
	Attributes Attributes
	Data       []byte

	// Timestamp of authenticated variables, preserved verbatim
	Time []byte
}

// MemStore holds a set of variables in memory, such as the contents of a variable dump
type MemStore struct {
	vars map[variableKey]*Variable
}

type variableKey struct {
	guid uuid.UUID
	name string
}

// Creates a store holding copies of the supplied variables
func NewMemStore(vars ...Variable) *MemStore {
	store := &MemStore{vars: map[variableKey]*Variable{}}
	for _, v := range vars {
		store.Put(v)
	}
	return store
}

// Adds or replaces a variable
func (s *MemStore) Put(v Variable) {
	v.Data = bytes.Clone(v.Data)
	v.Time = bytes.Clone(v.Time)
	s.vars[variableKey{guid: v.GUID, name: v.Name}] = &v
}

// Returns the variable with the specified name in the global namespace
func (s *MemStore) Get(name string) (Variable, bool) {
	v, found := s.vars[variableKey{guid: GlobalVariable, name: name}]
	if !found {
		return Variable{}, false
	}
	return *v, true
}

// Returns copies of every variable, ordered by GUID and then name
func (s *MemStore) Variables() []Variable {
	out := make([]Variable, 0, len(s.vars))
	for _, v := range s.vars {
		c := *v
		c.Data = bytes.Clone(v.Data)
		c.Time = bytes.Clone(v.Time)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GUID != out[j].GUID {
			return out[i].GUID.String() < out[j].GUID.String()
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *MemStore) ListNames() ([]string, error) {
	names := []string{}
	for key := range s.vars {
		if key.guid == GlobalVariable {
			names = append(names, key.name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemStore) Read(name string, buf []byte) (int, error) {
	v, found := s.vars[variableKey{guid: GlobalVariable, name: name}]
	if !found {
		return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	n := copy(buf, v.Data)
	if n < len(v.Data) {
		return n, io.ErrShortBuffer
	}
	return n, nil
}

func (s *MemStore) Write(name string, attrs Attributes, payload []byte) error {
	s.Put(Variable{Name: name, GUID: GlobalVariable, Attributes: attrs, Data: payload})
	return nil
}
