package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/slatesearch/internal/domain/canon"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	indexinguc "github.com/kailas-cloud/slatesearch/internal/usecase/indexing"
)

func newCanonCommand() *cobra.Command {
	var (
		kindName string
		file     string
		year     int
	)

	cmd := &cobra.Command{
		Use:   "canon",
		Short: "Print the canonical embedding text of records without embedding them",
		Long: `Read JSON-lines records of one kind and print "<id>\t<text>" per valid record.
Invalid records are reported on stderr with their line number.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := kind.Parse(kindName)
			if err != nil {
				return err
			}

			in, _, err := openInput(file)
			if err != nil {
				return err
			}
			defer in.Close()

			b := canon.New()
			if year > 0 {
				now := time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC)
				b = b.WithClock(func() time.Time { return now })
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
			line, invalid := 0, 0
			for scanner.Scan() {
				line++
				raw := bytes.TrimSpace(scanner.Bytes())
				if len(raw) == 0 {
					continue
				}
				item, err := indexinguc.Prepare(b, k, raw)
				if err != nil {
					invalid++
					fmt.Fprintf(errOut, "line %d: %v\n", line, err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", item.ID, item.Text)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			if invalid > 0 {
				return fmt.Errorf("%d invalid %s records", invalid, k)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kindName, "kind", "", "record kind: person, organization, location, production")
	cmd.Flags().StringVar(&file, "file", "-", "JSON-lines input file, - for stdin")
	cmd.Flags().IntVar(&year, "year", 0, "pin the current year used for derived ages")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
