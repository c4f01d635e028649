package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/R-ARM/GamepadTools/internal/config"
	"github.com/R-ARM/GamepadTools/internal/constants"
	"github.com/R-ARM/GamepadTools/internal/process"
	"github.com/R-ARM/GamepadTools/internal/reboot"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {

	// Define our Cobra command
	command := &cobra.Command{

		Long: strings.Join([]string{
			fmt.Sprintf("%s v%s", constants.APPLICATION, constants.VERSION),
			"",
			"Lists the UEFI boot entries by decoding the Boot#### variables directly, and sets the \"BootNext\"",
			"variable to boot into the selected entry once without modifying the default boot order.",
		}, "\n"),

		Use: "bootmgr [id]",

		Args: cobra.MaximumNArgs(1),

		SilenceUsage: true,

		Example: strings.Join([]string{
			"  bootmgr --list              Prints the decoded boot entries",
			"  bootmgr 0001                Sets BootNext to Boot0001 and reboots into it",
			"  bootmgr --match windows     Selects the first entry whose description matches and reboots into it",
			"  bootmgr --store vars.json 2 Sets BootNext in a JSON variable dump instead of the firmware",
		}, "\n"),
	}

	// Inject the usage information for our command's positional arguments
	idUsage := strings.Join([]string{
		"  id                 The hexadecimal number of the target boot entry, e.g. 0001 or Boot0001",
	}, "\n")
	template := command.UsageTemplate()
	template = strings.Replace(template, "\nFlags:\n", fmt.Sprintf("\nPositional Arguments:\n%s\n\nFlags:\n", idUsage), 1)
	command.SetUsageTemplate(template)

	// Define the command-line flags for our command
	flags := command.Flags()
	dryRun := flags.Bool("dry-run", false, "Describe the actions that would be performed but do not make any changes to the system")
	listOnly := flags.Bool("list", false, "Print the list of UEFI boot entries but do not set the BootNext variable")
	pattern := flags.String("match", "", "Select the first boot entry whose description matches this regular expression (case insensitive)")
	noElevate := flags.Bool("no-elevate", false, "Do not automatically prompt for elevated privileges when required")
	noReboot := flags.Bool("no-reboot", false, "Do not automatically reboot after setting the BootNext variable")
	pause := flags.Bool("pause", false, "Pause for input when the application is finished running")
	output := flags.String("output", "text", "The format used by --list, one of \"text\", \"json\" or \"yaml\"")
	configFile := flags.String("config", "", "Read settings from this YAML file instead of searching for bootmgr.yaml")
	flags.String("store", "", "Use a JSON variable dump instead of the system's UEFI variables")
	flags.String("efivars-dir", "", "The directory efivarfs is mounted at")
	flags.Bool("hide-fallback", false, "Hide entries that only point at a removable media fallback loader")
	flags.String("log-level", "info", "The log level, either \"info\" or \"debug\"")

	// Wire up the validation logic for our command-line flags and positional arguments
	command.RunE = func(cmd *cobra.Command, args []string) error {

		// If no flags or arguments were specified then print the usage message
		if len(os.Args) < 2 {
			cmd.Help()
			return nil
		}

		conf, err := config.Load(config.Options{ConfigFile: *configFile, Flags: cmd.Flags()})
		if err != nil {
			return err
		}

		req := request{
			pattern:   *pattern,
			dryRun:    *dryRun,
			listOnly:  *listOnly,
			noElevate: *noElevate,
			noReboot:  *noReboot,
			output:    *output,
		}
		if len(args) > 0 {
			req.target = args[0]
		}

		// Process the provided input values and propagate any errors
		a := &app{conf: conf, fs: afero.NewOsFs(), out: os.Stdout, reboot: reboot.Reboot}
		return a.run(req)
	}

	// Execute the command
	err := command.Execute()
	if err != nil {
		process.ExitWithPause(1, *pause)
	}

	process.ExitWithPause(0, *pause)
}
