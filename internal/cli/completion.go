package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var completionInstall bool

// completionShell describes how to generate and install the script for one
// shell. installPath is nil for shells without automatic install.
type completionShell struct {
	generate    func(w io.Writer) error
	loadHint    string
	installPath func(home string) string
	afterHint   func(target string) []string
}

var completionShells = map[string]completionShell{
	"bash": {
		generate: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		loadHint: `eval "$(supercraft completion bash)"`,
		installPath: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", "supercraft")
		},
		afterHint: func(target string) []string {
			return []string{"Restart your shell or run: source " + target}
		},
	},
	"zsh": {
		generate: func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		loadHint: `eval "$(supercraft completion zsh)"`,
		installPath: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_supercraft")
		},
		afterHint: func(target string) []string {
			return []string{
				"Ensure this directory is in your fpath. Add to ~/.zshrc if needed:",
				fmt.Sprintf("  fpath=(%s $fpath)", filepath.Dir(target)),
				"  autoload -Uz compinit && compinit",
			}
		},
	},
	"fish": {
		generate: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		loadHint: "supercraft completion fish | source",
		installPath: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions", "supercraft.fish")
		},
		afterHint: func(string) []string {
			return []string{"Completions will be available in new fish sessions automatically."}
		},
	},
	"powershell": {
		generate: func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		loadHint: "supercraft completion powershell | Out-String | Invoke-Expression",
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for supercraft",
	Long: `Set up shell tab-completions for supercraft commands, flags, task IDs,
snapshots, specs and templates.

Supported shells: bash, zsh, fish, powershell

Install into your shell's completion directory:

  supercraft completion bash --install

Or print the script to stdout for manual setup:

  supercraft completion zsh`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your shell's completion directory")

	// Replace Cobra's default completion command with ours.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell, ok := completionShells[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
	}

	if completionInstall {
		if shell.installPath == nil {
			return fmt.Errorf("automatic install is not supported for %s; add the output of 'supercraft completion %s' to your profile", args[0], args[0])
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("detecting home directory: %w", err)
		}
		target := shell.installPath(home)
		if err := installCompletion(afero.NewOsFs(), target, shell.generate); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s completions installed to %s\n", args[0], target)
		for _, line := range shell.afterHint(target) {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	// Hints go to stderr so eval "$(supercraft completion bash)" still works.
	errOut := cmd.ErrOrStderr()
	fmt.Fprintln(errOut, "# To load completions in your current session:")
	fmt.Fprintf(errOut, "#   %s\n#\n", shell.loadHint)
	return shell.generate(cmd.OutOrStdout())
}

// installCompletion writes the generated script to target, creating its
// directory, and reports close errors.
func installCompletion(fs afero.Fs, target string, generate func(io.Writer) error) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	f, err := fs.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := generate(f)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
