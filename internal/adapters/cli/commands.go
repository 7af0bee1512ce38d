package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/library-circulation/internal/adapters/http/dto"
	"github.com/jsamuelsen/library-circulation/internal/app"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/wiring"
)

func (r *Root) addBookCommand() *cobra.Command {
	var in app.AddBookInput

	cmd := &cobra.Command{
		Use:   "add-book",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "book title")
	cmd.Flags().StringVar(&in.Author, "author", "", "book author")
	cmd.Flags().StringVar(&in.ISBN, "isbn", "", "13 digit ISBN")
	cmd.Flags().IntVar(&in.TotalCopies, "copies", 1, "number of copies")

	cmd.RunE = r.run(func(ctx context.Context, c *wiring.Components, out io.Writer) error {
		id, err := c.Catalog.AddBook(ctx, in)
		if err != nil {
			return err
		}

		return printJSON(out, dto.CreatedResponse{ID: id, Message: "Book added successfully."})
	})

	return cmd
}

func (r *Root) listBooksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = r.run(func(ctx context.Context, c *wiring.Components, out io.Writer) error {
		books, err := c.Catalog.ListBooks(ctx)
		if err != nil {
			return err
		}

		return printJSON(out, dto.NewBookListResponse(books))
	})

	return cmd
}

func (r *Root) searchCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the catalog by title, author or ISBN",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&kind, "type", string(domain.SearchByTitle), "title, author or isbn")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return r.run(func(ctx context.Context, c *wiring.Components, out io.Writer) error {
			books, err := c.Catalog.SearchBooks(ctx, args[0], domain.SearchKind(strings.ToLower(kind)))
			if err != nil {
				return err
			}

			return printJSON(out, dto.NewBookListResponse(books))
		})(cmd, args)
	}

	return cmd
}

func (r *Root) borrowCommand() *cobra.Command {
	return r.loanCommand("borrow", "Lend a book to a patron",
		func(ctx context.Context, c *wiring.Components, out io.Writer, patronID string, bookID int64) error {
			receipt, err := c.Circulation.Borrow(ctx, patronID, bookID)
			if err != nil {
				return err
			}

			return printJSON(out, dto.NewBorrowResponse(receipt))
		})
}

func (r *Root) returnCommand() *cobra.Command {
	return r.loanCommand("return", "Take a borrowed book back",
		func(ctx context.Context, c *wiring.Components, out io.Writer, patronID string, bookID int64) error {
			receipt, err := c.Circulation.Return(ctx, patronID, bookID)
			if err != nil {
				return err
			}

			return printJSON(out, dto.NewReturnResponse(receipt))
		})
}

func (r *Root) lateFeeCommand() *cobra.Command {
	return r.loanCommand("late-fee", "Quote the late fee on an outstanding loan",
		func(ctx context.Context, c *wiring.Components, out io.Writer, patronID string, bookID int64) error {
			quote, err := c.Circulation.QuoteLateFee(ctx, patronID, bookID)
			if err != nil {
				return err
			}

			return printJSON(out, dto.NewFeeResponse(quote))
		})
}

func (r *Root) payCommand() *cobra.Command {
	return r.loanCommand("pay", "Charge the late fee on an outstanding loan",
		func(ctx context.Context, c *wiring.Components, out io.Writer, patronID string, bookID int64) error {
			receipt, err := c.Payments.PayLateFees(ctx, patronID, bookID, c.Gateway)
			if err != nil {
				return err
			}

			return printJSON(out, dto.NewPaymentResponse(receipt))
		})
}

type loanFunc func(ctx context.Context, c *wiring.Components, out io.Writer, patronID string, bookID int64) error

// loanCommand builds a "<use> <patron-id> <book-id>" command.
func (r *Root) loanCommand(use, short string, fn loanFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <patron-id> <book-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[1])
			if err != nil {
				return err
			}

			return r.run(func(ctx context.Context, c *wiring.Components, out io.Writer) error {
				return fn(ctx, c, out, args[0], bookID)
			})(cmd, args)
		},
	}
}

func (r *Root) reportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report <patron-id>",
		Short: "Show a patron's loans and late fees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(func(ctx context.Context, c *wiring.Components, out io.Writer) error {
				report, err := c.Reports.StatusReport(ctx, args[0])
				if err != nil {
					return err
				}

				return printJSON(out, dto.NewReportResponse(report))
			})(cmd, args)
		},
	}
}

func (r *Root) refundCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refund <transaction-id> <amount>",
		Short: "Refund part or all of a late fee payment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(func(ctx context.Context, c *wiring.Components, out io.Writer) error {
				amount, err := domain.ParseRefundAmount(args[0], args[1])
				if err != nil {
					return err
				}

				receipt, err := c.Payments.RefundLateFeePayment(ctx, args[0], amount, c.Gateway)
				if err != nil {
					return err
				}

				return printJSON(out, dto.NewRefundResponse(receipt))
			})(cmd, args)
		},
	}
}

func parseBookID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("book id %q: must be a positive integer", raw)
	}

	return id, nil
}
