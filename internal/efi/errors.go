package efi

import "errors"

// Decode failures reported for a single boot variable
// (Callers match these with errors.Is, the returned errors carry offsets and node details)
var (
	ErrTruncatedHeader         = errors.New("truncated load option header")
	ErrUnterminatedDescription = errors.New("unterminated description")
	ErrPathListSizeMismatch    = errors.New("file path list length exceeds the available data")
	ErrUnsupportedNode         = errors.New("unsupported device path node")
	ErrMalformedNodeLength     = errors.New("malformed device path node length")
	ErrInvalidVariableName     = errors.New("invalid boot variable name")
)
