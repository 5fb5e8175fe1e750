package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"revision-runtime/backend/internal/codefiles"
	"revision-runtime/backend/pkg/scripting"
)

var (
	verbose bool
	python  string
	timeout time.Duration
	codeDir string
)

var rootCmd = &cobra.Command{
	Use:   "rtutil",
	Short: "Utilities for transformation revision files",
	Long: `Works on transformation revision JSON files on disk.

Available subcommands:
  code    - write, remove or export the code files of components
  uuid    - derive a stable UUID from a seed string
  docs    - print the Markdown documentation of a revision
  doctest - run the examples embedded in a component's code`,
	SilenceUsage: true,
}

// codeCmd groups the bulk code file operations
var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Manage .py code files next to revision JSON files",
}

var codeWriteCmd = &cobra.Command{
	Use:   "write [dir]",
	Short: "Write a .py file next to every component JSON file below dir",
	Args:  cobra.ExactArgs(1),
	RunE:  runCodeWrite,
}

var codeRemoveCmd = &cobra.Command{
	Use:   "remove [dir]",
	Short: "Remove .py files that have a sibling revision JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCodeRemove,
}

var codeExportCmd = &cobra.Command{
	Use:   "export [source-dir] [target-dir]",
	Short: "Export the code of every component below source-dir into target-dir",
	Args:  cobra.ExactArgs(2),
	RunE:  runCodeExport,
}

var uuidCmd = &cobra.Command{
	Use:   "uuid [seed]",
	Short: "Print the UUID derived from seed",
	Long: `Prints a UUID that only depends on the seed, so generated revisions
keep their ids across runs.

Example:
  rtutil uuid "component: Linear Interpolation"`,
	Args: cobra.ExactArgs(1),
	RunE: runUUID,
}

var docsCmd = &cobra.Command{
	Use:   "docs [revision.json]",
	Short: "Print the Markdown documentation of a revision",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocs,
}

var doctestCmd = &cobra.Command{
	Use:   "doctest [revision.json]",
	Short: "Run the examples embedded in a component's code",
	Long: `Writes the component's code to --dir and runs its docstring examples
with the Python interpreter given by --python. The result is printed as JSON.
The command fails when at least one example fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runDoctest,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "List every file touched")

	doctestCmd.Flags().StringVar(&python, "python", "python3", "Python interpreter")
	doctestCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Timeout for one doctest run")
	doctestCmd.Flags().StringVar(&codeDir, "dir", "./transformations/code/", "Directory for the code file")

	codeCmd.AddCommand(codeWriteCmd)
	codeCmd.AddCommand(codeRemoveCmd)
	codeCmd.AddCommand(codeExportCmd)

	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(uuidCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(doctestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func report(cmd *cobra.Command, verb string, paths []string) {
	if verbose {
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d code file(s)\n", verb, len(paths))
}

func runCodeWrite(cmd *cobra.Command, args []string) error {
	written, err := codefiles.WriteCodeFiles(args[0])
	if err != nil {
		return err
	}
	report(cmd, "wrote", written)
	return nil
}

func runCodeRemove(cmd *cobra.Command, args []string) error {
	removed, err := codefiles.RemoveCodeFiles(args[0])
	if err != nil {
		return err
	}
	report(cmd, "removed", removed)
	return nil
}

func runCodeExport(cmd *cobra.Command, args []string) error {
	written, err := codefiles.WriteAllCodeFiles(args[0], args[1])
	if err != nil {
		return err
	}
	report(cmd, "exported", written)
	return nil
}

func runUUID(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), scripting.UUIDFromSeed(args[0]))
	return nil
}
