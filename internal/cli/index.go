package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	dombatch "github.com/kailas-cloud/slatesearch/internal/domain/batch"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
	"github.com/kailas-cloud/slatesearch/internal/repository/embcache"
	indexinguc "github.com/kailas-cloud/slatesearch/internal/usecase/indexing"
)

// maxReportedProblems bounds the per-record problems printed after a run.
const maxReportedProblems = 20

type indexOptions struct {
	kind      string
	file      string
	recreate  bool
	batchSize int
	quiet     bool
}

func newIndexCommand(root *rootOptions) *cobra.Command {
	opts := &indexOptions{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed and store records of one kind",
		Long: `Read JSON-lines records of one kind, canonicalize them, embed them, and
store them with their display fields under the kind's key space.

Examples:
  slatesearch index --kind person --file people.jsonl
  slatesearch index --kind location --file venues.jsonl --recreate
  cat orgs.jsonl | slatesearch index --kind organization --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.kind, "kind", "", "record kind: person, organization, location, production")
	cmd.Flags().StringVar(&opts.file, "file", "", "JSON-lines input file, - for stdin")
	cmd.Flags().BoolVar(&opts.recreate, "recreate", false, "drop and recreate the kind's index before writing")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "records per embedding call (default from config)")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "disable the progress bar")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runIndex(cmd *cobra.Command, root *rootOptions, opts *indexOptions) error {
	k, err := kind.Parse(opts.kind)
	if err != nil {
		return err
	}

	in, total, err := openInput(opts.file)
	if err != nil {
		return err
	}
	defer in.Close()

	a, err := loadApp(root.env, root.logLevel)
	if err != nil {
		return err
	}
	logger := a.logger
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics.RegisterEmbeddingMetrics()

	producer, err := a.newProducer()
	if err != nil {
		return err
	}
	defer producer.Release()
	if err := a.initProducer(ctx, producer); err != nil {
		return err
	}

	var embedder domain.TextEmbedder = producer
	if !a.cfg.Embedding.CacheDisabled {
		embedder = embcache.New(producer, store, a.cacheKeyPrefix(), metrics.EmbeddingCacheTotal, logger)
	}

	records, err := a.records(store, producer.Dimensions())
	if err != nil {
		return err
	}
	batchSize := opts.batchSize
	if batchSize <= 0 {
		batchSize = a.cfg.Index.BatchSize
	}
	svc := indexinguc.New(records, embedder, logger).WithMaxBatchSize(batchSize)

	if _, err := svc.EnsureIndexes(ctx); err != nil {
		return err
	}
	if opts.recreate {
		if err := svc.Rebuild(ctx, k); err != nil {
			return err
		}
	}

	bar := newProgressBar(cmd.ErrOrStderr(), total, k, opts.quiet)
	var problems []dombatch.Result
	summary, err := svc.Ingest(ctx, k, in, func(results []dombatch.Result) {
		_ = bar.Add(len(results))
		for _, r := range results {
			if r.Status() != dombatch.StatusOK && len(problems) < maxReportedProblems {
				problems = append(problems, r)
			}
		}
	})
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("index %s: %w", k, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nIndexed %s records: %d ok, %d invalid, %d failed (of %d)\n",
		k, summary.OK, summary.Invalid, summary.Failed, summary.Total())
	for _, p := range problems {
		fmt.Fprintf(out, "  %s [%s]: %v\n", p.ID(), p.Status(), p.Err())
	}
	logger.Debug("Index command finished", zap.String("kind", k.String()))

	if summary.Failed > 0 {
		return fmt.Errorf("%d %s records could not be embedded or stored", summary.Failed, k)
	}
	return nil
}

// openInput opens path (or stdin for "-") and counts its non-blank lines when
// the input can be read twice. total is -1 when unknown.
func openInput(path string) (io.ReadCloser, int, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), -1, nil
	}
	clean := filepath.Clean(path)
	total, err := countRecords(clean)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(clean)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", clean, err)
	}
	return f, total, nil
}

func countRecords(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			n++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return n, nil
}

func newProgressBar(w io.Writer, total int, k kind.Kind, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]Indexing %s[reset]", k)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
