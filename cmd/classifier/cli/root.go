// Package cli is a thin cobra-based demonstration consumer of the
// classifier library: it is not part of the library's stable surface
// and carries none of its invariants, the way the spec reserves
// argument parsing and shell output to external collaborators.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the demo binary's version string.
const Version = "0.1.0"

// NewRootCmd returns the root command for the classifier demo CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "classifier",
		Short:         "classifier — text-classification model trainer and query tool",
		Long:          "classifier trains and queries the bayes, tfidf, and lsi models from github.com/corpuskit/classifier against a local model file.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	cmd.SetVersionTemplate("classifier {{.Version}}\n")
	cmd.Version = Version

	coreGroup := &cobra.Group{ID: "core", Title: "Core Commands:"}
	cmd.AddGroup(coreGroup)

	bayesCmd := newBayesCmd()
	bayesCmd.GroupID = "core"
	tfidfCmd := newTFIDFCmd()
	tfidfCmd.GroupID = "core"
	lsiCmd := newLSICmd()
	lsiCmd.GroupID = "core"

	cmd.AddCommand(bayesCmd, tfidfCmd, lsiCmd)
	return cmd
}

// Run executes the root command and exits with the appropriate code.
func Run() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		if !IsSilentError(err) {
			fmt.Fprintln(root.ErrOrStderr(), err)
		}
		os.Exit(1)
	}
}
