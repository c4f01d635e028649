package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/R-ARM/GamepadTools/internal/boot"
	"github.com/ghodss/yaml"
)

// Supported values for --output
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func validOutput(format string) bool {
	switch format {
	case outputText, outputJSON, outputYAML:
		return true
	}
	return false
}

// Prints the boot entries in the requested format
func writeEntries(w io.Writer, entries []boot.Entry, format string, separator string) error {
	switch format {

	case outputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)

	case outputYAML:
		raw, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err

	default:
		fmt.Fprintln(w, "Detected the following UEFI boot entries:")
		for _, entry := range entries {
			fmt.Fprintf(w, "- %s\n", entry.Format(separator))
		}
		return nil
	}
}
