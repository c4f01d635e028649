package efivars_test

import (
	"io"
	"testing"

	"github.com/R-ARM/GamepadTools/internal/efivars"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var otherVendor = uuid.MustParse("d719b2cb-3d3a-4596-a3bc-dad00e67656f")

func TestMemStoreListNames(t *testing.T) {
	store := efivars.NewMemStore(
		efivars.Variable{Name: "Boot0002", GUID: efivars.GlobalVariable, Data: []byte{0x02}},
		efivars.Variable{Name: "Boot0001", GUID: efivars.GlobalVariable, Data: []byte{0x01}},
		efivars.Variable{Name: "db", GUID: otherVendor, Data: []byte{0xFF}},
	)

	names, err := store.ListNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Boot0001", "Boot0002"}, names)
}

func TestMemStoreRead(t *testing.T) {
	store := efivars.NewMemStore(efivars.Variable{
		Name: "Boot0001",
		GUID: efivars.GlobalVariable,
		Data: []byte{0x01, 0x02, 0x03, 0x04},
	})

	buf := make([]byte, 8)
	n, err := store.Read("Boot0001", buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf[:n])

	// A short buffer is filled and the truncation reported
	small := make([]byte, 3)
	n, err = store.Read("Boot0001", small)
	assert.ErrorIs(t, err, io.ErrShortBuffer)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, small)

	_, err = store.Read("Boot0009", buf)
	assert.ErrorIs(t, err, efivars.ErrNotFound)
}

func TestMemStoreWrite(t *testing.T) {
	store := efivars.NewMemStore()

	payload := []byte{0x01, 0x00}
	attrs := efivars.NonVolatile | efivars.BootServiceAccess | efivars.RuntimeAccess
	require.NoError(t, store.Write("BootNext", attrs, payload))

	// The store keeps its own copy
	payload[0] = 0xFF

	v, found := store.Get("BootNext")
	require.True(t, found)
	assert.Equal(t, []byte{0x01, 0x00}, v.Data)
	assert.Equal(t, attrs, v.Attributes)
	assert.Equal(t, efivars.GlobalVariable, v.GUID)
}

func TestAttributesString(t *testing.T) {
	assert.Equal(t, "NV|BS|RT", (efivars.NonVolatile | efivars.BootServiceAccess | efivars.RuntimeAccess).String())
	assert.Equal(t, "BS|RT|AT", (efivars.BootServiceAccess | efivars.RuntimeAccess | efivars.TimeBasedAuthenticatedWriteAccess).String())
	assert.Equal(t, "", efivars.Attributes(0).String())
}
