package cli

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpuskit/classifier/tfidf"
)

func newTFIDFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tfidf",
		Short: "Fit and query a TF-IDF vectorizer",
	}
	cmd.AddCommand(newTFIDFFitCmd(), newTFIDFTransformCmd())
	return cmd
}

func newTFIDFFitCmd() *cobra.Command {
	var modelPath string
	var minDF, maxDF float64
	var sublinear bool
	var ngramLo, ngramHi int
	cmd := &cobra.Command{
		Use:   "fit [corpus-file]",
		Short: "Fit a vectorizer on a corpus file (one document per line)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			corpus, err := readLines(args[0])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			v, err := tfidf.NewVectorizer(
				tfidf.WithMinDF(minDF),
				tfidf.WithMaxDF(maxDF),
				tfidf.WithSublinearTF(sublinear),
				tfidf.WithNgramRange(ngramLo, ngramHi),
			)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			if err := v.Fit(corpus); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			data, err := v.MarshalBinary()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			if err := os.WriteFile(modelPath, data, 0o644); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fitted on %d documents, %d vocabulary terms\n", v.NumDocuments(), len(v.Vocabulary()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "tfidf.model", "path to the model file")
	cmd.Flags().Float64Var(&minDF, "min-df", 1, "minimum document frequency (absolute 0 or >=1, or fraction in (0,1))")
	cmd.Flags().Float64Var(&maxDF, "max-df", math.MaxInt32, "maximum document frequency (absolute 0 or >=1, or fraction in (0,1)); the default prunes nothing")
	cmd.Flags().BoolVar(&sublinear, "sublinear-tf", false, "use 1+log(tf) scaling")
	cmd.Flags().IntVar(&ngramLo, "ngram-lo", 1, "minimum n-gram length")
	cmd.Flags().IntVar(&ngramHi, "ngram-hi", 1, "maximum n-gram length")
	return cmd
}

func newTFIDFTransformCmd() *cobra.Command {
	var modelPath string
	cmd := &cobra.Command{
		Use:   "transform [text...]",
		Short: "Transform text into its L2-normalized TF-IDF vector",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			data, err := os.ReadFile(modelPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			v := &tfidf.Vectorizer{}
			if err := v.UnmarshalBinary(data); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			vec, err := v.Transform(strings.Join(args, " "))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return NewSilentError(err)
			}
			for term, weight := range vec {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.6f\n", term, weight)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "tfidf.model", "path to the model file")
	return cmd
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	return lines, nil
}
