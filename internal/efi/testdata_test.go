package efi_test

import (
	"encoding/binary"
	"testing"

	"github.com/R-ARM/GamepadTools/internal/efi"
	"github.com/stretchr/testify/require"
)

// Builds a raw device path node with a correct length field
func node(nodeType efi.NodeType, subType efi.NodeSubType, payload ...byte) []byte {
	raw := []byte{byte(nodeType), byte(subType), 0, 0}
	binary.LittleEndian.PutUint16(raw[2:4], uint16(len(payload)+4))
	return append(raw, payload...)
}

func endNode() []byte {
	return node(efi.EndNode, efi.EndEntireSubType)
}

func path(nodes ...[]byte) []byte {
	out := []byte{}
	for _, n := range nodes {
		out = append(out, n...)
	}
	return out
}

// A hard drive node with a 12 byte payload, so a path of one drive and an end node is 0x14 bytes
func hardDrive() []byte {
	return node(efi.MediaNode, efi.MediaHardDriveSubType, make([]byte, 12)...)
}

func filePath(p string) []byte {
	return node(efi.MediaNode, efi.MediaFilePathSubType, efi.EncodeUTF16(p)...)
}

func marshal(t *testing.T, option *efi.LoadOption) []byte {
	t.Helper()
	raw, err := option.MarshalBinary()
	require.NoError(t, err)
	return raw
}
