package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/library-circulation/internal/app"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/wiring"
)

const defaultImportWorkers = 4

// importColumns is the required CSV header, in any order.
var importColumns = []string{"title", "author", "isbn", "copies"}

// ImportRow is the outcome of one CSV row.
type ImportRow struct {
	Line  int    `json:"line"`
	ISBN  string `json:"isbn"`
	ID    int64  `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// ImportSummary is printed after an import.
type ImportSummary struct {
	Imported int         `json:"imported"`
	Failed   int         `json:"failed"`
	Rows     []ImportRow `json:"rows"`
}

func (r *Root) importCommand() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Add books from a CSV file with title,author,isbn,copies columns",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().IntVar(&workers, "workers", defaultImportWorkers, "concurrent inserts")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening import file: %w", err)
		}
		defer f.Close()

		inputs, lines, err := readBooksCSV(f)
		if err != nil {
			return err
		}

		return r.run(func(ctx context.Context, c *wiring.Components, out io.Writer) error {
			summary := summarize(c.Catalog.ImportBooks(ctx, inputs, workers), lines)
			if err := printJSON(out, summary); err != nil {
				return err
			}

			if summary.Failed > 0 {
				return domain.NewValidationError("import", fmt.Sprintf("%d of %d rows failed", summary.Failed, len(inputs)))
			}

			return nil
		})(cmd, args)
	}

	return cmd
}

// readBooksCSV parses the import file. lines[i] is the file line of inputs[i].
func readBooksCSV(r io.Reader) (inputs []app.AddBookInput, lines []int, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range importColumns {
		if _, ok := col[name]; !ok {
			return nil, nil, fmt.Errorf("CSV header is missing column %q", name)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, nil, fmt.Errorf("reading CSV: %w", err)
		}

		line, _ := reader.FieldPos(0)

		copies, err := strconv.Atoi(strings.TrimSpace(record[col["copies"]]))
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: copies must be an integer", line)
		}

		inputs = append(inputs, app.AddBookInput{
			Title:       record[col["title"]],
			Author:      record[col["author"]],
			ISBN:        strings.TrimSpace(record[col["isbn"]]),
			TotalCopies: copies,
		})
		lines = append(lines, line)
	}

	return inputs, lines, nil
}

func summarize(results []app.ImportResult, lines []int) ImportSummary {
	summary := ImportSummary{Rows: make([]ImportRow, len(results))}

	for i, res := range results {
		row := ImportRow{Line: lines[i], ISBN: res.Input.ISBN, ID: res.ID}
		if res.Err != nil {
			row.Error = domain.Describe(res.Err)
			row.Kind = string(domain.KindOf(res.Err))
			summary.Failed++
		} else {
			summary.Imported++
		}

		summary.Rows[i] = row
	}

	return summary
}
