package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort = "Kernel module alias database"
	MsgRootLong = `kmoddb builds an in-memory index of kernel module aliases for a kernel
version and resolves device identifiers against it: which loadable modules
the attached ACPI, PCI or DMI-identified hardware needs, which module owns
a single alias, and which modules a block device stack depends on.`

	MsgDetectShort     = "Detect modules for attached hardware"
	MsgResolveShort    = "Resolve a single alias to its module"
	MsgBlkdevShort     = "List modules required by a block device"
	MsgConfigShort     = "Print the default bus configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Result messages
	MsgNoModules = "No matching modules found."
)
