package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	// Only apply formatting if output is a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// formatModule returns a module name highlighted for terminal output
func formatModule(s string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return s
	}
	return pterm.FgCyan.Sprint(s)
}

// printModuleSet prints a titled, sorted list of module names
func printModuleSet(title string, modules []string) {
	pterm.DefaultSection.Println(title)
	if len(modules) == 0 {
		pterm.Println(MsgNoModules)
		return
	}
	items := make([]pterm.BulletListItem, 0, len(modules))
	for _, module := range modules {
		items = append(items, pterm.BulletListItem{Level: 0, Text: formatModule(module)})
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()
}
