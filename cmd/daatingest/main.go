// Command daatingest builds a sealed WAND / Block-Max WAND index from a
// directory of plain-text documents, one document per file, and writes the
// sealed postings file plus its companion term dictionary that daatquery
// reads.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blazeindex/daatwand"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("daatingest failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daatingest",
		Short: "Build a sealed WAND / Block-Max WAND index from a document corpus",
		RunE:  runIngest,
	}

	flags := cmd.Flags()
	flags.String("corpus", "", "directory of plain-text documents, one document per file")
	flags.String("index", "", "path to write the sealed index file")
	flags.String("dictionary", "", "path to write the term dictionary file")
	flags.String("checkpoint", "", "optional path to a resumable ingestion checkpoint")
	flags.Float64("k1", 1.5, "BM25 K1 parameter")
	flags.Float64("b", 0.75, "BM25 B parameter")
	flags.String("config", "", "optional config file (viper-compatible) overriding defaults")

	cobra.CheckErr(viper.BindPFlags(flags))
	return cmd
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if cfg := viper.GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	corpusDir := viper.GetString("corpus")
	indexPath := viper.GetString("index")
	dictPath := viper.GetString("dictionary")
	if corpusDir == "" || indexPath == "" || dictPath == "" {
		return fmt.Errorf("--corpus, --index and --dictionary are all required")
	}

	files, err := corpusFiles(corpusDir)
	if err != nil {
		return fmt.Errorf("listing corpus %q: %w", corpusDir, err)
	}

	checkpointPath := viper.GetString("checkpoint")
	idx, resumeFrom, err := loadOrInitIndex(checkpointPath)
	if err != nil {
		return err
	}
	idx.BM25Params = daat.BM25Parameters{K1: viper.GetFloat64("k1"), B: viper.GetFloat64("b")}

	for i, path := range files {
		docID := i + 1
		if docID <= resumeFrom {
			continue
		}

		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading document %q: %w", path, err)
		}
		idx.Index(docID, string(text))

		if checkpointPath != "" {
			if err := checkpoint(idx, checkpointPath); err != nil {
				return fmt.Errorf("writing checkpoint %q: %w", checkpointPath, err)
			}
		}
	}
	slog.Info("ingestion complete", slog.Int("documents", len(files)), slog.Int("terms", len(idx.PostingsList)))

	scorer := daat.NewBM25Scorer(idx.BM25Params, idx.TotalTerms, idx.TotalDocs)
	lists := daat.Seal(idx, scorer)

	if err := writeIndex(indexPath, lists); err != nil {
		return err
	}
	if err := writeDictionary(dictPath, lists); err != nil {
		return err
	}

	slog.Info("wrote sealed index", slog.String("index", indexPath), slog.String("dictionary", dictPath))
	return nil
}

// corpusFiles lists a corpus directory's entries in a stable, deterministic
// order so document ids stay consistent across a checkpointed resume.
func corpusFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// loadOrInitIndex decodes a prior checkpoint if one exists, returning the
// document count already ingested so runIngest can skip past it; otherwise
// it returns a fresh index and a resume point of zero.
func loadOrInitIndex(checkpointPath string) (*daat.InvertedIndex, int, error) {
	if checkpointPath == "" {
		return daat.NewInvertedIndex(), 0, nil
	}

	data, err := os.ReadFile(checkpointPath)
	if os.IsNotExist(err) {
		return daat.NewInvertedIndex(), 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading checkpoint %q: %w", checkpointPath, err)
	}

	idx := daat.NewInvertedIndex()
	if err := idx.Decode(data); err != nil {
		return nil, 0, fmt.Errorf("decoding checkpoint %q: %w", checkpointPath, err)
	}
	slog.Info("resuming from checkpoint", slog.String("path", checkpointPath), slog.Int("documents", idx.TotalDocs))
	return idx, idx.TotalDocs, nil
}

// checkpoint persists idx's current ingestion state so a crash or restart
// picks up after the last successfully indexed document instead of
// re-tokenizing the whole corpus.
func checkpoint(idx *daat.InvertedIndex, path string) error {
	data, err := idx.Encode()
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func writeIndex(path string, lists map[string]*daat.PostingsList) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating index file %q: %w", path, err)
	}
	defer f.Close()

	if err := daat.WriteIndexFile(f, lists); err != nil {
		return fmt.Errorf("writing index file %q: %w", path, err)
	}
	return nil
}

// writeDictionary assigns each sealed term a stable integer id and writes
// the "<term> <id>" lines LoadDictionary expects, in sorted term order so
// the file is reproducible across runs over the same corpus.
func writeDictionary(path string, lists map[string]*daat.PostingsList) error {
	terms := make([]string, 0, len(lists))
	for term := range lists {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dictionary file %q: %w", path, err)
	}
	defer f.Close()

	for i, term := range terms {
		if _, err := fmt.Fprintln(f, term+" "+strconv.Itoa(i+1)); err != nil {
			return fmt.Errorf("writing dictionary file %q: %w", path, err)
		}
	}
	return nil
}
