package boot_test

import (
	"errors"
	"testing"

	"github.com/R-ARM/GamepadTools/internal/boot"
	"github.com/R-ARM/GamepadTools/internal/efivars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []boot.Entry{
	{ID: 1, RawSuffix: "0001", Description: "ubuntu", PathSummary: []string{"Hard Drive", `\EFI\ubuntu\shimx64.efi`}},
	{ID: 2, RawSuffix: "0002", Description: "Windows Boot Manager", PathSummary: []string{"Hard Drive", `\EFI\Microsoft\Boot\bootmgfw.efi`}},
}

func TestSelect(t *testing.T) {
	entry, payload, err := boot.Select(catalog, 1)
	require.NoError(t, err)
	assert.Equal(t, "ubuntu", entry.Description)
	assert.Equal(t, []byte{0x01, 0x00}, payload)

	_, payload, err = boot.Select([]boot.Entry{{ID: 0x1234, RawSuffix: "1234"}}, 0x1234)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x34, 0x12}, payload)
}

func TestSetBootNext(t *testing.T) {
	store := efivars.NewMemStore()

	entry, err := boot.SetBootNext(store, catalog, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), entry.ID)

	v, found := store.Get(boot.BootNextVariable)
	require.True(t, found)
	assert.Equal(t, []byte{0x01, 0x00}, v.Data)
	assert.Equal(t, efivars.NonVolatile|efivars.BootServiceAccess|efivars.RuntimeAccess, v.Attributes)
}

type recordingStore struct {
	efivars.Store
	writes int
	err    error
}

func (s *recordingStore) Write(name string, attrs efivars.Attributes, payload []byte) error {
	s.writes++
	return s.err
}

func TestSetBootNextUnknownID(t *testing.T) {
	store := &recordingStore{}

	_, err := boot.SetBootNext(store, catalog, 9)
	assert.ErrorIs(t, err, boot.ErrNoSuchEntry)
	assert.Equal(t, 0, store.writes)
}

func TestSetBootNextWriteFailure(t *testing.T) {
	store := &recordingStore{err: errors.New("read-only file system")}

	_, err := boot.SetBootNext(store, catalog, 2)
	assert.ErrorContains(t, err, "read-only file system")
	assert.NotErrorIs(t, err, boot.ErrNoSuchEntry)
	assert.Equal(t, 1, store.writes)
}

func TestParseID(t *testing.T) {
	testCases := []struct {
		input    string
		expected uint16
	}{
		{"1", 0x0001},
		{"0001", 0x0001},
		{"Boot0001", 0x0001},
		{"001a", 0x001A},
		{"FFFF", 0xFFFF},
		{" 0002 ", 0x0002},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			id, err := boot.ParseID(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}

	for _, input := range []string{"", "Boot", "10000", "xyz", "-1", "Boot00001"} {
		t.Run("invalid "+input, func(t *testing.T) {
			_, err := boot.ParseID(input)
			assert.Error(t, err)
		})
	}
}

func TestMatch(t *testing.T) {
	entry, err := boot.Match(catalog, "windows")
	require.NoError(t, err)
	assert.Equal(t, uint16(2), entry.ID)

	entry, err = boot.Match(catalog, "^UBU")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), entry.ID)

	_, err = boot.Match(catalog, "fedora")
	assert.ErrorIs(t, err, boot.ErrNoSuchEntry)

	_, err = boot.Match(catalog, "(")
	assert.Error(t, err)
}

func TestEntryFormat(t *testing.T) {
	assert.Equal(t, `0002: Windows Boot Manager, at: Hard Drive \EFI\Microsoft\Boot\bootmgfw.efi`, catalog[1].String())
	assert.Equal(t, `0002: Windows Boot Manager, at: Hard Drive/\EFI\Microsoft\Boot\bootmgfw.efi`, catalog[1].Format("/"))
	assert.Equal(t, "0003: Empty, at: ", boot.Entry{ID: 3, RawSuffix: "0003", Description: "Empty"}.String())
}
