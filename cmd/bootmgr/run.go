package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/R-ARM/GamepadTools/internal/boot"
	"github.com/R-ARM/GamepadTools/internal/config"
	"github.com/R-ARM/GamepadTools/internal/efivars"
	"github.com/R-ARM/GamepadTools/internal/elevate"
	"github.com/spf13/afero"
)

// What the user asked for on the command line
type request struct {
	target    string
	pattern   string
	dryRun    bool
	listOnly  bool
	noElevate bool
	noReboot  bool
	output    string
}

// Determines whether the request selects an entry rather than just listing them
func (r request) selects() bool {
	return r.target != "" || r.pattern != ""
}

type app struct {
	conf   *config.Config
	fs     afero.Fs
	out    io.Writer
	reboot func() error
}

// Opens the variable store named by the configuration, falling back to the running system's variables
func (a *app) openStore(req request) (efivars.Store, error) {

	// A dump file needs no firmware support and no privileges
	if a.conf.StoreFile != "" {
		a.conf.Log.V(1).Info("using variable dump", "path", a.conf.StoreFile)
		return efivars.OpenDump(a.fs, a.conf.StoreFile)
	}

	// Verify that the operating system has been booted in UEFI mode
	enabled, err := efivars.Available(a.conf.EfivarsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to query system UEFI status: %v", err)
	} else if !enabled {
		return nil, fmt.Errorf("unsupported system configuration: the operating system has not been booted in UEFI mode")
	}

	// Determine whether we require elevated privileges
	// (We need them for writing to NVRAM variables under Linux, and for both reading and writing under Windows)
	requireElevation := (!req.dryRun && !req.listOnly) || runtime.GOOS == "windows"

	// Determine whether the process is running with insufficient privileges
	if requireElevation && !elevate.IsElevated() {

		// Determine whether we should automatically request elevated privileges
		if !req.noElevate {

			// Re-run the process with elevated privileges and propagate the exit code
			exitCode, err := elevate.RunElevated()
			if err != nil {
				return nil, fmt.Errorf("failed to re-launch the process with elevated privileges: %v", err)
			}
			os.Exit(exitCode)

		} else {
			fmt.Fprint(a.out, "Warning: running without elevated privileges, access to UEFI NVRAM variables may be denied.\n\n")
		}
	}

	return efivars.NewSystemStore(a.conf.EfivarsDir)
}

func (a *app) run(req request) error {

	if req.target != "" && req.pattern != "" {
		return errors.New("specify either a boot entry ID or --match, not both")
	} else if req.listOnly && req.selects() {
		return errors.New("--list only prints the boot entries and cannot be combined with a boot entry ID or --match")
	} else if !req.listOnly && !req.selects() {
		return errors.New("a boot entry ID or --match pattern must be specified for selecting the target UEFI boot entry")
	}

	if req.output == "" {
		req.output = outputText
	} else if !validOutput(req.output) {
		return fmt.Errorf("unsupported output format \"%s\": expected %s, %s or %s", req.output, outputText, outputJSON, outputYAML)
	} else if req.output != outputText && !req.listOnly {
		return fmt.Errorf("--output %s can only be used together with --list", req.output)
	}

	// Parse the ID before touching the store so typos fail fast
	var id uint16
	if req.target != "" {
		parsed, err := boot.ParseID(req.target)
		if err != nil {
			return err
		}
		id = parsed
	}

	store, err := a.openStore(req)
	if err != nil {
		return err
	}

	// Retrieve the list of UEFI boot entries
	catalog := boot.NewCatalog(
		store,
		boot.WithPolicy(a.conf.Policy()),
		boot.WithScratchSize(a.conf.ScratchSize),
		boot.WithLogger(a.conf.Log.WithName("catalog")),
	)
	result, err := catalog.Scan()
	if err != nil {
		return fmt.Errorf("failed to list UEFI boot entries: %w", err)
	}
	if len(result.Dropped) > 0 {
		a.conf.Log.Info("skipped boot variables that could not be decoded", "count", len(result.Dropped))
	}

	// Print the list of boot entries
	if err := writeEntries(a.out, result.Entries, req.output, a.conf.PathSeparator); err != nil {
		return fmt.Errorf("failed to print boot entries: %w", err)
	}

	// If we are just listing the boot entries then stop here
	if req.listOnly {
		return nil
	}

	// Identify the target boot entry
	if req.pattern != "" {
		fmt.Fprintf(a.out, "\nMatching boot entries against regular expression \"%s\"\n", req.pattern)
		matched, err := boot.Match(result.Entries, req.pattern)
		if err != nil {
			return err
		}
		id = matched.ID
	}
	entry, payload, err := boot.Select(result.Entries, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Selected boot entry: \"%s\"\n", entry.Format(a.conf.PathSeparator))

	// Don't modify the BootNext variable or reboot if we are performing a dry run
	if req.dryRun {
		fmt.Fprintf(a.out, "Dry run: would write %s = % x\n", boot.BootNextVariable, payload)
		return nil
	}

	// Set the value of the BootNext variable to the entry's identifier
	fmt.Fprintln(a.out, "Setting the BootNext variable...")
	if _, err := boot.SetBootNext(store, result.Entries, entry.ID); err != nil {
		return fmt.Errorf("failed to set BootNext variable value: %w", err)
	}

	// Determine whether we are triggering a reboot
	if !req.noReboot {
		fmt.Fprintln(a.out, "Rebooting now...")
		if err := a.reboot(); err != nil {
			return fmt.Errorf("failed to reboot: %v", err)
		}
	}

	return nil
}
