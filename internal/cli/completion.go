package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/topfloor/pkg/config"
	"github.com/matzehuels/topfloor/pkg/floorplan"
	"github.com/matzehuels/topfloor/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for topfloor.

Besides commands and flags, the scripts complete solver backends, objectives,
graph formats, design files (*.json) and symmetric-net files (*.sym).

  $ source <(topfloor completion bash)
  $ topfloor completion zsh > "${fpath[1]}/_topfloor"
  $ topfloor completion fish > ~/.config/fish/completions/topfloor.fish
  PS> topfloor completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeValues attaches value completions to the flags cmd defines.
func completeValues(cmd *cobra.Command) {
	fixed := func(name string, values []string) {
		if cmd.Flags().Lookup(name) == nil {
			return
		}
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
	fixed("backend", config.Backends())
	fixed("objective", floorplan.Objectives())
	fixed("format", []string{pipeline.FormatDOT, pipeline.FormatSVG})

	if cmd.Flags().Lookup("design") != nil {
		_ = cmd.MarkFlagFilename("design", "json")
	}
	if cmd.Flags().Lookup("symnet") != nil {
		_ = cmd.MarkFlagFilename("symnet", "sym")
	}
}
