// Command shredcompare reads two or more SHIF-A streams and writes the
// coalesced SCF-B report of their common segments to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meisterluk/shredtrees/internal/cliutil"
)

var (
	argCrossTreeOnly bool
	argDiskIndex     bool
	argIndexPath     string
	argBaseDir       string
	argConfigOut     bool
	argJSONOutput    bool

	files []string

	w, log   cliutil.Output
	exitCode int
	cmdErr   error
)

var rootCmd = &cobra.Command{
	Use:   "shredcompare [-d] FILE...",
	Short: "Build a coalesced clique report from two or more SHIF-A streams",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 {
			return fmt.Errorf("expected at least two SHIF-A files, got %d", len(args))
		}
		files = args

		if envJSON, ok := cliutil.EnvToBool("SHREDTREES_JSON"); ok && !cmd.Flags().Changed("json") {
			argJSONOutput = envJSON
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		c := &ShredcompareCommand{
			Files:         files,
			CrossTreeOnly: argCrossTreeOnly,
			DiskIndex:     argDiskIndex,
			IndexPath:     argIndexPath,
			BaseDir:       argBaseDir,
			ConfigOutput:  argConfigOut,
			JSONOutput:    argJSONOutput,
		}
		exitCode, cmdErr = c.Run(w, log)
	},
}

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&argCrossTreeOnly, "cross-tree-only", "d", false, "drop cliques whose locations all share one tree")
	f.BoolVar(&argDiskIndex, "disk-index", false, "use an on-disk bbolt index instead of an in-memory multimap")
	f.StringVar(&argIndexPath, "index-path", "", "explicit path for the on-disk index (default: a process-unique temp file)")
	f.StringVarP(&argBaseDir, "basedir", "b", ".", "base directory clique text extraction will be relative to")
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
