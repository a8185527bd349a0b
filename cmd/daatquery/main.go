// Command daatquery runs a batch of top-k queries against a sealed index
// using the WAND / Block-Max WAND dynamic-pruning engine.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blazeindex/daatwand"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("daatquery failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daatquery",
		Short: "Run top-k queries over a sealed WAND / Block-Max WAND index",
		RunE:  runQuery,
	}

	flags := cmd.Flags()
	flags.String("index", "", "path to the sealed index file")
	flags.String("dictionary", "", "path to the dictionary file")
	flags.String("queries", "", "path to the query file")
	flags.Int("k", 10, "number of results per query")
	flags.String("index-form", "bmw", "wand or bmw")
	flags.String("traversal", "or", "or (disjunctive) or and (conjunctive)")
	flags.Bool("version-two", false, "use the negation-first BMW ordering instead of block-max-first")
	flags.Float64("f", 1.0, "theta-push multiplier for disjunctive pivot selection")
	flags.Bool("only-complete", false, "drop a query entirely if any of its terms is missing from the dictionary")
	flags.String("config", "", "optional config file (viper-compatible) overriding defaults")

	cobra.CheckErr(viper.BindPFlags(flags))
	return cmd
}

func runQuery(cmd *cobra.Command, _ []string) error {
	if cfg := viper.GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	indexPath := viper.GetString("index")
	dictPath := viper.GetString("dictionary")
	queryPath := viper.GetString("queries")
	if indexPath == "" || dictPath == "" || queryPath == "" {
		return fmt.Errorf("--index, --dictionary and --queries are all required")
	}

	indexFile, err := os.Open(indexPath)
	if err != nil {
		return fmt.Errorf("opening index file %q: %w", indexPath, err)
	}
	defer indexFile.Close()

	lists, err := daat.ReadIndexFile(indexFile)
	if err != nil {
		return fmt.Errorf("reading index file %q: %w", indexPath, err)
	}

	dictFile, err := os.Open(dictPath)
	if err != nil {
		return fmt.Errorf("opening dictionary file %q: %w", dictPath, err)
	}
	defer dictFile.Close()

	dict, err := daat.LoadDictionary(dictFile)
	if err != nil {
		return fmt.Errorf("loading dictionary %q: %w", dictPath, err)
	}

	queryFile, err := os.Open(queryPath)
	if err != nil {
		return fmt.Errorf("opening query file %q: %w", queryPath, err)
	}
	defer queryFile.Close()

	queries, err := daat.ParseQueries(dict, queryFile, viper.GetBool("only-complete"))
	if err != nil {
		return fmt.Errorf("parsing query file %q: %w", queryPath, err)
	}

	docLengths := make(map[uint32]int)
	engine := daat.NewEngine(lists, dict, daat.ImpactScorer{}, docLengths)
	engine.F = viper.GetFloat64("f")
	if viper.GetBool("version-two") {
		engine.NegationOrder = daat.NegationFirst
	}

	form, err := parseIndexForm(viper.GetString("index-form"))
	if err != nil {
		return err
	}
	traversal, err := parseTraversal(viper.GetString("traversal"))
	if err != nil {
		return err
	}

	k := viper.GetInt("k")
	for _, q := range queries {
		result, err := engine.Search(q, k, form, traversal)
		if err != nil {
			slog.Warn("query failed", slog.Uint64("query_id", q.ID), slog.Any("error", err))
			continue
		}
		printResult(result)
	}
	return nil
}

func printResult(res daat.Result) {
	fmt.Printf("query %d: %d results (postings_evaluated=%d docs_fully_evaluated=%d "+
		"docs_added_to_heap=%d final_threshold=%.6f negation_passed=%d negation_failed=%d unique_pivots=%d)\n",
		res.QueryID, len(res.Docs),
		res.Profile.PostingsEvaluated, res.Profile.DocsFullyEvaluated,
		res.Profile.DocsAddedToHeap, res.Profile.FinalThreshold,
		res.Profile.NegationPassed, res.Profile.NegationFailed, res.Profile.UniquePivots())
	for _, doc := range res.Docs {
		fmt.Printf("  %d\t%.6f\n", doc.DocID, doc.Score)
	}
}

func parseIndexForm(s string) (daat.IndexForm, error) {
	switch s {
	case "wand":
		return daat.WAND, nil
	case "bmw":
		return daat.BMW, nil
	default:
		return 0, fmt.Errorf("unknown index-form %q: must be wand or bmw", s)
	}
}

func parseTraversal(s string) (daat.Traversal, error) {
	switch s {
	case "or":
		return daat.Disjunctive, nil
	case "and":
		return daat.Conjunctive, nil
	default:
		return 0, fmt.Errorf("unknown traversal %q: must be or or and", s)
	}
}
