package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/kmoddb/pkg/config"
	"github.com/arthur-debert/kmoddb/pkg/kmoddb"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Long: `Config prints the built-in bus configuration (ignored buses, plain
buses and the no-kmod allowlist) in TOML. Save it, edit it and point
KMODDB_CONFIG at the copy to override the defaults.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(config.DefaultConfigContent())
		},
	}
}

func newDetectCmd(kernelVersion *string) *cobra.Command {
	var (
		acpi   bool
		pci    bool
		dmi    bool
		dmiStr string
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: MsgDetectShort,
		Long: `Detect matches the attached hardware against the alias index and lists
the loadable modules it needs. At least one of --acpi, --pci or --dmi must
be given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !acpi && !pci && !dmi {
				return fmt.Errorf("nothing to detect: pass --acpi, --pci or --dmi")
			}

			db, err := kmoddb.New(*kernelVersion)
			if err != nil {
				return err
			}

			if acpi {
				modules, err := db.DetectACPI()
				if err != nil {
					return err
				}
				printModuleSet("ACPI", modules.Sorted())
			}
			if pci {
				modules, err := db.DetectPCI()
				if err != nil {
					return err
				}
				printModuleSet("PCI", modules.Sorted())
			}
			if dmi {
				modules, err := db.DetectDMI(dmiStr)
				if err != nil {
					return err
				}
				printModuleSet("DMI", modules.Sorted())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&acpi, "acpi", false, "Detect modules for ACPI devices")
	cmd.Flags().BoolVar(&pci, "pci", false, "Detect modules for PCI devices")
	cmd.Flags().BoolVar(&dmi, "dmi", false, "Detect modules matching the platform DMI string")
	cmd.Flags().StringVar(&dmiStr, "dmi-string", "", "DMI string to match instead of the platform's own")

	return cmd
}

func newResolveCmd(kernelVersion *string) *cobra.Command {
	var bus string

	cmd := &cobra.Command{
		Use:   "resolve <alias>",
		Short: MsgResolveShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := kmoddb.New(*kernelVersion)
			if err != nil {
				return err
			}
			module, err := db.Resolve(args[0], bus)
			if err != nil {
				return err
			}
			fmt.Println(formatBold(module))
			return nil
		},
	}

	cmd.Flags().StringVar(&bus, "bus", "", "Bus hint for the alias (e.g. pci, usb)")

	return cmd
}

func newBlkdevCmd(kernelVersion *string) *cobra.Command {
	return &cobra.Command{
		Use:   "blkdev <device>",
		Short: MsgBlkdevShort,
		Long: `Blkdev walks the block device's sysfs ancestor chain and lists every
loadable module the device stack requires, e.g. "kmoddb blkdev sda".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := kmoddb.New(*kernelVersion)
			if err != nil {
				return err
			}
			modules, err := db.BlockDeviceModules(args[0])
			if err != nil {
				return err
			}
			printModuleSet(args[0], modules.Sorted())
			return nil
		},
	}
}
