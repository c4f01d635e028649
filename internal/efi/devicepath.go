package efi

import (
	"encoding/binary"
	"fmt"
)

// NodeType is the type field of a device path node
type NodeType uint8

const (
	HardwareNode  NodeType = 0x01
	ACPINode      NodeType = 0x02
	MessagingNode NodeType = 0x03
	MediaNode     NodeType = 0x04
	BBSNode       NodeType = 0x05
	EndNode       NodeType = 0x7f
)

// NodeSubType is the sub-type field of a device path node, its meaning depends on the NodeType
type NodeSubType uint8

// End node subtypes
const (
	EndInstanceSubType NodeSubType = 0x01
	EndEntireSubType   NodeSubType = 0xff
)

// Every node starts with type (1 byte), subtype (1 byte) and length (2 bytes, little-endian)
const nodeHeaderSize = 4

// Node is a single element of a device path.
// Payload aliases the region being walked.
type Node struct {
	Type    NodeType
	SubType NodeSubType
	Length  uint16
	Payload []byte
}

func (n Node) String() string {
	return fmt.Sprintf("Node(type=0x%02x,subtype=0x%02x,len=%d)", uint8(n.Type), uint8(n.SubType), n.Length)
}

// Walker iterates over the nodes of a device path region, stopping at the first end node.
//
// The zero value is not usable, create walkers with NewWalker. Typical use:
//
//	w := efi.NewWalker(path)
//	for w.Next() {
//		node := w.Node()
//	}
//	if err := w.Err(); err != nil {
//		...
//	}
type Walker struct {
	data       []byte
	offset     int
	steps      int
	node       Node
	terminator *NodeSubType
	err        error
}

// Creates a walker over the supplied device path bytes
func NewWalker(data []byte) *Walker {
	return &Walker{data: data}
}

// Rewinds the walker to the start of the region
func (w *Walker) Reset() {
	w.offset = 0
	w.steps = 0
	w.node = Node{}
	w.terminator = nil
	w.err = nil
}

// Advances to the next node, returning false once an end node is reached or decoding fails
func (w *Walker) Next() bool {

	if w.err != nil || w.terminator != nil {
		return false
	}

	// No node is smaller than its header, which bounds how many nodes a region can hold
	w.steps++
	if w.steps > len(w.data)/nodeHeaderSize {
		w.err = fmt.Errorf("%w: no end node after %d nodes", ErrMalformedNodeLength, w.steps-1)
		return false
	}

	// Running out of data before an end node is corruption, not a clean finish
	remaining := len(w.data) - w.offset
	if remaining < nodeHeaderSize {
		w.err = fmt.Errorf(
			"%w: %d bytes left at offset %d without an end node",
			ErrMalformedNodeLength,
			remaining,
			w.offset,
		)
		return false
	}

	header := w.data[w.offset : w.offset+nodeHeaderSize]
	node := Node{
		Type:    NodeType(header[0]),
		SubType: NodeSubType(header[1]),
		Length:  binary.LittleEndian.Uint16(header[2:4]),
	}

	// The declared length covers the header and must stay inside the region
	if node.Length < nodeHeaderSize || int(node.Length) > remaining {
		w.err = fmt.Errorf(
			"%w: %v at offset %d, %d bytes remain",
			ErrMalformedNodeLength,
			node,
			w.offset,
			remaining,
		)
		return false
	}
	node.Payload = w.data[w.offset+nodeHeaderSize : w.offset+int(node.Length)]
	w.offset += int(node.Length)

	if node.Type == EndNode {
		subtype := node.SubType
		w.terminator = &subtype
		w.node = Node{}
		return false
	}

	w.node = node
	return true
}

// Returns the node most recently produced by Next
func (w *Walker) Node() Node {
	return w.node
}

// Returns the error that stopped the walk, if any
func (w *Walker) Err() error {
	return w.err
}

// Returns the subtype of the end node that stopped the walk, and whether one was reached
func (w *Walker) Terminator() (NodeSubType, bool) {
	if w.terminator == nil {
		return 0, false
	}
	return *w.terminator, true
}
