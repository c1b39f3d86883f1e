package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpuskit/classifier/bayes"
)

func newBayesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bayes",
		Short: "Train and query a naive-Bayes category classifier",
	}
	cmd.AddCommand(newBayesTrainCmd(), newBayesClassifyCmd())
	return cmd
}

func newBayesTrainCmd() *cobra.Command {
	var modelPath, category string
	cmd := &cobra.Command{
		Use:   "train [text...]",
		Short: "Train a category on the given text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			c, err := loadBayes(modelPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			c.Train(category, strings.Join(args, " "))
			if err := saveBayes(modelPath, c); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "trained %q\n", category)
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "bayes.model", "path to the model file")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category to train (required)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newBayesClassifyCmd() *cobra.Command {
	var modelPath string
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify the given text and print the winning category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			c, err := loadBayes(modelPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			got := c.Classify(strings.Join(args, " "))
			if got == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(no category)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), got)
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "bayes.model", "path to the model file")
	return cmd
}

func loadBayes(path string) (*bayes.Classifier, error) {
	c := &bayes.Classifier{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return bayes.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return c, nil
}

func saveBayes(path string, c *bayes.Classifier) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}
