package efi

import "fmt"

// Messaging subtypes, grouped by the label they are presented with
var messagingLabels = map[NodeSubType]string{
	0x01: "ATAPI",
	0x02: "SCSI",
	0x03: "Fibre Channel",
	0x15: "Fibre Channel",
	0x04: "1394",
	0x05: "USB",
	0x0f: "USB",
	0x10: "USB",
	0x06: "I2O",
	0x09: "Network",
	0x0b: "Network",
	0x0c: "Network",
	0x0d: "Network",
	0x14: "Network",
	0x1c: "Network",
	0x1f: "Network",
	0x0a: "Vendor specific",
	0x12: "SATA",
	0x13: "iSCSI",
	0x16: "SAS",
	0x17: "NVMe",
	0x18: "URI",
	0x19: "UFS",
	0x1a: "SD Card",
	0x1b: "Bluetooth",
	0x1e: "Bluetooth",
	0x1d: "eMMC",
	0x20: "NVDIMM",
}

// Device logical unit nodes qualify the preceding node and carry no label of their own
const messagingLogicalUnitSubType NodeSubType = 0x11

// Media subtypes
const (
	MediaHardDriveSubType NodeSubType = 0x01
	MediaCDROMSubType     NodeSubType = 0x02
	MediaFilePathSubType  NodeSubType = 0x04
	MediaPIWGFileSubType  NodeSubType = 0x06
	MediaPIWGVolSubType   NodeSubType = 0x07
)

// Returns the presentation label for a node.
// The boolean is false for nodes that are recognised but contribute no label.
func Label(node Node) (string, bool, error) {
	switch node.Type {

	case MessagingNode:
		if node.SubType == messagingLogicalUnitSubType {
			return "", false, nil
		}
		if label, found := messagingLabels[node.SubType]; found {
			return label, true, nil
		}

	case MediaNode:
		switch node.SubType {
		case MediaHardDriveSubType:
			return "Hard Drive", true, nil
		case MediaCDROMSubType:
			return "CD-ROM", true, nil
		case MediaFilePathSubType:
			path, err := filePathText(node)
			if err != nil {
				return "", false, err
			}
			return path, true, nil
		case MediaPIWGFileSubType, MediaPIWGVolSubType:
			return "UEFI PI", true, nil
		}

	case BBSNode:
		return "CSM", true, nil
	}

	return "", false, fmt.Errorf("%w: %v", ErrUnsupportedNode, node)
}

// Decodes the path name carried by a media file path node.
// The node length bounds the text, so a missing terminator is tolerated.
func filePathText(node Node) (string, error) {
	if len(node.Payload)%2 != 0 {
		return "", fmt.Errorf("%w: odd file path payload in %v", ErrMalformedNodeLength, node)
	}

	if text, _, err := DecodeUTF16(node.Payload); err == nil {
		return text, nil
	}
	return decodeCodeUnits(node.Payload), nil
}

// Summary is the presentation form of a device path
type Summary struct {

	// The labels of every node that produced one, in path order
	Labels []string

	// The last media file path in the path, empty if there is none
	FilePath string
}

// Walks a device path region and labels each node, failing on the first node that cannot be decoded
func Summarize(path []byte) (Summary, error) {
	summary := Summary{Labels: []string{}}

	walker := NewWalker(path)
	for walker.Next() {
		node := walker.Node()
		label, emitted, err := Label(node)
		if err != nil {
			return Summary{}, err
		}
		if !emitted {
			continue
		}

		summary.Labels = append(summary.Labels, label)
		if node.Type == MediaNode && node.SubType == MediaFilePathSubType {
			summary.FilePath = label
		}
	}

	if err := walker.Err(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
