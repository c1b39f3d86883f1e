package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpuskit/classifier/lsi"
)

func newLSICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsi",
		Short: "Build and query a latent semantic indexing engine",
	}
	cmd.AddCommand(newLSIAddCmd(), newLSIBuildCmd(), newLSISearchCmd(), newLSIClassifyCmd(), newLSIRelatedCmd())
	return cmd
}

func newLSIAddCmd() *cobra.Command {
	var modelPath, category string
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Add a document to the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadLSI(modelPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			id := e.AddItem(strings.Join(args, " "), category)
			if err := saveLSI(modelPath, e); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "lsi.model", "path to the model file")
	cmd.Flags().StringVarP(&category, "category", "c", "", "optional category label")
	return cmd
}

func newLSIBuildCmd() *cobra.Command {
	var modelPath string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the truncated SVD index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadLSI(modelPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			if err := e.BuildIndex(); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			if err := saveLSI(modelPath, e); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			stats := e.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "built: %d items, rank %d\n", stats.ItemCount, stats.Rank)
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "lsi.model", "path to the model file")
	return cmd
}

func newLSISearchCmd() *cobra.Command {
	var modelPath string
	var topK int
	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Find the top-k most similar documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadLSI(modelPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			ids, err := e.Search(strings.Join(args, " "), topK)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "lsi.model", "path to the model file")
	cmd.Flags().IntVarP(&topK, "top", "k", 5, "number of results to return")
	return cmd
}

func newLSIClassifyCmd() *cobra.Command {
	var modelPath string
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify text by the category of the most similar item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadLSI(modelPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			got, err := e.Classify(strings.Join(args, " "))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			if got == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(no category)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), got)
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "lsi.model", "path to the model file")
	return cmd
}

func newLSIRelatedCmd() *cobra.Command {
	var modelPath string
	var topK int
	cmd := &cobra.Command{
		Use:   "related [item-id-or-text...]",
		Short: "Find documents related to an existing item id or ad-hoc text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadLSI(modelPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			ids, err := e.FindRelated(strings.Join(args, " "), topK)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "lsi.model", "path to the model file")
	cmd.Flags().IntVarP(&topK, "top", "k", 5, "number of results to return")
	return cmd
}

func loadLSI(path string) (*lsi.Engine, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return lsi.New()
	}
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	e := &lsi.Engine{}
	if err := e.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return e, nil
}

func saveLSI(path string, e *lsi.Engine) error {
	data, err := e.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}
