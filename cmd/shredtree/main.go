// Command shredtree walks one file tree and writes its SHIF-A shred list
// to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meisterluk/shredtrees/internal/cliutil"
	"github.com/meisterluk/shredtrees/internal/config"
)

var (
	argTreeName    string
	argChdirDir    string
	argShredSize   int
	argWhitespace  bool
	argContentOnly bool
	argBinary      bool
	argDebug       bool
	argHashMethod  string
	argWorkers     int
	argConfigOut   bool
	argJSONOutput  bool

	tree string

	w, log cliutil.Output
	exitCode int
	cmdErr   error
)

var rootCmd = &cobra.Command{
	Use:   "shredtree TREE",
	Short: "Shred a file tree's eligible lines into a SHIF-A stream",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one positional argument {tree}, got %d", len(args))
		}
		tree = args[0]

		if argShredSize <= 0 {
			return fmt.Errorf("expected --shred-size to be a positive integer, got %d", argShredSize)
		}

		flags := cmd.Flags()
		envJSON, ok := cliutil.EnvToBool("SHREDTREES_JSON")
		if ok && !flags.Changed("json") {
			argJSONOutput = envJSON
		}
		if v := cliutil.EnvOr("SHREDTREES_HASH_METHOD", ""); v != "" && !flags.Changed("hash-method") {
			argHashMethod = v
		}
		if n, ok := cliutil.EnvToInt("SHREDTREES_WORKERS"); ok && !flags.Changed("workers") {
			argWorkers = n
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if argTreeName == "" {
			argTreeName = defaultTreeName(tree)
		}
		if argWorkers <= 0 {
			argWorkers = countCPUs()
		}

		c := &ShredtreeCommand{
			Tree:         tree,
			TreeName:     argTreeName,
			ChdirDir:     argChdirDir,
			ShredSize:    argShredSize,
			Whitespace:   argWhitespace,
			ContentOnly:  argContentOnly,
			Binary:       argBinary,
			Debug:        argDebug,
			HashMethod:   argHashMethod,
			Workers:      argWorkers,
			ConfigOutput: argConfigOut,
			JSONOutput:   argJSONOutput,
		}
		exitCode, cmdErr = c.Run(w, log)
	},
}

func init() {
	defaults, _ := config.Load(config.DefaultPath())

	f := rootCmd.Flags()
	f.StringVarP(&argTreeName, "name", "n", "", "tree name used as the file_id prefix (default: basename of TREE)")
	f.StringVarP(&argChdirDir, "chdir", "d", "", "change to this directory before walking TREE")
	f.IntVarP(&argShredSize, "shred-size", "s", defaults.ShredSize, "number of relevant lines per shred")
	f.BoolVarP(&argWhitespace, "whitespace", "w", defaults.Normalization == "remove_whitespace", "collapse whitespace runs and trim line ends before hashing")
	f.BoolVarP(&argContentOnly, "content-only", "c", false, "restrict traversal to .c/.h/.txt files")
	f.BoolVar(&argBinary, "binary", false, "emit binary SHIF-A framing instead of text")
	f.BoolVarP(&argDebug, "debug", "x", false, "print per-file diagnostics to stderr while shredding")
	f.StringVarP(&argHashMethod, "hash-method", "a", defaults.HashMethod, "hash algorithm to use (md5, sha3-512)")
	f.IntVar(&argWorkers, "workers", 0, "number of concurrent shredding workers (default: number of CPUs)")
	f.BoolVar(&argConfigOut, "config", false, "print the resolved configuration as JSON and exit")
	f.BoolVar(&argJSONOutput, "json", false, "emit JSON status messages on stderr")
}

func main() {
	w = &cliutil.PlainOutput{Device: os.Stdout}
	log = &cliutil.PlainOutput{Device: os.Stderr}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
	if cmdErr != nil {
		os.Exit(cliutil.HandleError(os.Stderr, cmdErr, argJSONOutput))
	}
	os.Exit(exitCode)
}
