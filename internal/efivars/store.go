// Package efivars provides access to UEFI variables in the EFI global variable namespace.
package efivars

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Vendor GUID of the variables defined by the UEFI specification (Boot####, BootNext, BootOrder, ...)
var GlobalVariable = uuid.MustParse("8be4df61-93ca-11d2-aa0d-00e098032b8c")

// Returned by Read when the named variable does not exist
var ErrNotFound = errors.New("variable not found")

// Attributes is the UEFI variable attribute bit set
type Attributes uint32

const (
	NonVolatile                       Attributes = 0x00000001
	BootServiceAccess                 Attributes = 0x00000002
	RuntimeAccess                     Attributes = 0x00000004
	HardwareErrorRecord               Attributes = 0x00000008
	AuthenticatedWriteAccess          Attributes = 0x00000010
	TimeBasedAuthenticatedWriteAccess Attributes = 0x00000020
	AppendWrite                       Attributes = 0x00000040
)

var attributeNames = []struct {
	bit  Attributes
	name string
}{
	{NonVolatile, "NV"},
	{BootServiceAccess, "BS"},
	{RuntimeAccess, "RT"},
	{HardwareErrorRecord, "HR"},
	{AuthenticatedWriteAccess, "AW"},
	{TimeBasedAuthenticatedWriteAccess, "AT"},
	{AppendWrite, "AP"},
}

func (a Attributes) String() string {
	names := []string{}
	for _, attr := range attributeNames {
		if a&attr.bit != 0 {
			names = append(names, attr.name)
		}
	}
	return strings.Join(names, "|")
}

// Store is a source of UEFI variables in the global namespace.
//
// Read copies the variable's data into buf and returns the number of bytes written.
// If the data does not fit, buf is filled and io.ErrShortBuffer is returned alongside the count.
type Store interface {
	ListNames() ([]string, error)
	Read(name string, buf []byte) (int, error)
	Write(name string, attrs Attributes, payload []byte) error
}
