package boot_test

import (
	"encoding/binary"

	"github.com/R-ARM/GamepadTools/internal/efi"
	"github.com/R-ARM/GamepadTools/internal/efivars"
)

func node(nodeType efi.NodeType, subType efi.NodeSubType, payload ...byte) []byte {
	raw := []byte{byte(nodeType), byte(subType), 0, 0}
	binary.LittleEndian.PutUint16(raw[2:4], uint16(len(payload)+4))
	return append(raw, payload...)
}

func devicePath(nodes ...[]byte) []byte {
	out := []byte{}
	for _, n := range nodes {
		out = append(out, n...)
	}
	return append(out, node(efi.EndNode, efi.EndEntireSubType)...)
}

func hardDrive() []byte {
	return node(efi.MediaNode, efi.MediaHardDriveSubType, make([]byte, 12)...)
}

func filePath(p string) []byte {
	return node(efi.MediaNode, efi.MediaFilePathSubType, efi.EncodeUTF16(p)...)
}

func loadOption(description string, path []byte) []byte {
	option := &efi.LoadOption{
		Attributes:   efi.LOAD_OPTION_ACTIVE,
		Description:  description,
		FilePathList: path,
	}
	raw, err := option.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return raw
}

func variable(name string, data []byte) efivars.Variable {
	return efivars.Variable{
		Name:       name,
		GUID:       efivars.GlobalVariable,
		Attributes: efivars.NonVolatile | efivars.BootServiceAccess | efivars.RuntimeAccess,
		Data:       data,
	}
}
