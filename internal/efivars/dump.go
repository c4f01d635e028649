package efivars

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Only version 2 of the virt-fw-vars JSON layout is understood
const dumpVersion = 2

type dumpVariable struct {
	Name string `json:"name"`
	GUID string `json:"guid"`
	Attr uint32 `json:"attr"`
	Data string `json:"data"`           // hex encoded
	Time string `json:"time,omitempty"` // hex encoded
}

type dumpFile struct {
	Version   int            `json:"version"`
	Variables []dumpVariable `json:"variables"`
}

// Reads a JSON variable dump into a new MemStore
func LoadDump(fs afero.Fs, path string) (*MemStore, error) {

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	var dump dumpFile
	if err := json.Unmarshal(raw, &dump); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	if dump.Version != dumpVersion {
		return nil, fmt.Errorf("%s: unsupported variable dump version: %d", path, dump.Version)
	}

	store := NewMemStore()
	for index, entry := range dump.Variables {

		guid, err := uuid.Parse(entry.GUID)
		if err != nil {
			return nil, fmt.Errorf("%s: variable %d (%s): invalid guid: %v", path, index, entry.Name, err)
		}

		data, err := hex.DecodeString(entry.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: variable %d (%s): invalid data: %v", path, index, entry.Name, err)
		}

		var timestamp []byte
		if entry.Time != "" {
			if timestamp, err = hex.DecodeString(entry.Time); err != nil {
				return nil, fmt.Errorf("%s: variable %d (%s): invalid time: %v", path, index, entry.Name, err)
			}
		}

		store.Put(Variable{
			Name:       entry.Name,
			GUID:       guid,
			Attributes: Attributes(entry.Attr),
			Data:       data,
			Time:       timestamp,
		})
	}

	return store, nil
}

// Writes the contents of a MemStore as a JSON variable dump
func SaveDump(fs afero.Fs, path string, store *MemStore) error {

	dump := dumpFile{Version: dumpVersion, Variables: []dumpVariable{}}
	for _, v := range store.Variables() {
		entry := dumpVariable{
			Name: v.Name,
			GUID: v.GUID.String(),
			Attr: uint32(v.Attributes),
			Data: hex.EncodeToString(v.Data),
		}
		if len(v.Time) > 0 {
			entry.Time = hex.EncodeToString(v.Time)
		}
		dump.Variables = append(dump.Variables, entry)
	}

	raw, err := json.MarshalIndent(dump, "", "    ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, append(raw, '\n'), 0o644)
}

// DumpStore is a MemStore backed by a JSON variable dump file, writes are saved back to the file immediately
type DumpStore struct {
	*MemStore
	fs   afero.Fs
	path string
}

// Opens a JSON variable dump for reading and writing
func OpenDump(fs afero.Fs, path string) (*DumpStore, error) {
	store, err := LoadDump(fs, path)
	if err != nil {
		return nil, err
	}
	return &DumpStore{MemStore: store, fs: fs, path: path}, nil
}

func (s *DumpStore) Write(name string, attrs Attributes, payload []byte) error {
	if err := s.MemStore.Write(name, attrs, payload); err != nil {
		return err
	}
	if err := SaveDump(s.fs, s.path, s.MemStore); err != nil {
		return fmt.Errorf("failed to save variable dump %s: %v", s.path, err)
	}
	return nil
}
