// Package cmd provides the CLI commands for indexlog.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"github.com/spf13/cobra"
)

// Shells with a completion generator.
var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   "completion SHELL",
	Short: "Print a shell completion script",
	Long: `Print a completion script for bash, zsh, fish, or powershell.

Besides commands and flags, the script completes change kinds (--kind),
categories (--category), delta types (--delta), periods (--since, --until),
structure and script files, and the IDs of archived exports for
'exports show', 'exports delete', and 'submit --id'.

Bash (needs the bash-completion package):
  $ source <(indexlog completion bash)
  $ indexlog completion bash > ~/.local/share/bash-completion/completions/indexlog

Zsh (compinit must be enabled):
  $ indexlog completion zsh > "${fpath[1]}/_indexlog"

Fish:
  $ indexlog completion fish > ~/.config/fish/completions/indexlog.fish

PowerShell:
  PS> indexlog completion powershell | Out-String | Invoke-Expression

Start a new shell after installing a script.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(out, true)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	default:
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	}
}
