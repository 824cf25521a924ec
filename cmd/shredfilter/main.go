// Command shredfilter applies size, filename and significance filters to
// an SCF-B report and writes the preened result back out, or extracts
// the matched text with --extract.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meisterluk/shredtrees/internal/cliutil"
)

var (
	argMinSize         uint32
	argFilenameRegex   string
	argSignificantOnly bool
	argBaseDir         string
	argExtract         bool
	argConfigOut       bool
	argJSONOutput      bool

	input string

	w, log   cliutil.Output
	exitCode int
	cmdErr   error
)

var rootCmd = &cobra.Command{
	Use:   "shredfilter FILE",
	Short: "Filter and preen an SCF-B clique report",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one SCF-B file, got %d", len(args))
		}
		input = args[0]

		if envJSON, ok := cliutil.EnvToBool("SHREDTREES_JSON"); ok && !cmd.Flags().Changed("json") {
			argJSONOutput = envJSON
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		c := &ShredfilterCommand{
			Input:           input,
			MinSize:         argMinSize,
			FilenameRegex:   argFilenameRegex,
			SignificantOnly: argSignificantOnly,
			BaseDir:         argBaseDir,
			Extract:         argExtract,
			ConfigOutput:    argConfigOut,
			JSONOutput:      argJSONOutput,
		}
		exitCode, cmdErr = c.Run(w, log)
	},
}

func init() {
	f := rootCmd.Flags()
	f.Uint32Var(&argMinSize, "min-size", 0, "drop cliques whose member locations span fewer lines than this")
	f.StringVar(&argFilenameRegex, "filename-regex", "", "keep only cliques with a location whose file_id matches this pattern")
	f.BoolVar(&argSignificantOnly, "significant-only", false, "drop cliques whose text is not significant")
	f.StringVarP(&argBaseDir, "basedir", "d", ".", "base directory clique text extraction will be relative to")
	f.BoolVar(&argExtract, "extract", false, "print the matched text of every surviving clique instead of an SCF-B report")
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
