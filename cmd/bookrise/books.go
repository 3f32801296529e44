package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
)

const maxTextWidth = 60

func newBooksCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "books",
		Short: "Inspect BookRise books",
	}
	output := OutputTable
	command.PersistentFlags().Var(&output, "output", "Output format. Options: table, json")
	command.AddCommand(newBooksListCommand(&output))
	return command
}

func newBooksListCommand(output *OutputFormat) *cobra.Command {
	var cached bool
	command := &cobra.Command{
		Use:   "list",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeSession, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer closeSession()

			var books []bookrise.Book
			if cached {
				books, err = s.CachedBooks(ctx)
			} else {
				books, err = s.ListBooks(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list books: %w", err)
			}
			if *output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), books)
			}
			printBooks(cmd.OutOrStdout(), books)
			return nil
		},
	}
	command.Flags().BoolVar(&cached, "cached", false, "Read the books saved by the last sync without calling the API")
	return command
}

func printBooks(out io.Writer, books []bookrise.Book) {
	if len(books) == 0 {
		_, _ = fmt.Fprintln(out, "No books found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tPROGRESS")
	for _, book := range books {
		progress := "-"
		if book.PercentRead != nil {
			progress = strconv.Itoa(int(*book.PercentRead*100+0.5)) + "%"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", book.ID, book.Title, book.Author, progress)
	}
	_ = w.Flush()
}

func newHighlightsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "highlights",
		Short: "Inspect highlights of a book",
	}
	output := OutputTable
	command.PersistentFlags().Var(&output, "output", "Output format. Options: table, json")
	command.AddCommand(&cobra.Command{
		Use:   "list <book id>",
		Short: "List highlights of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeSession, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer closeSession()

			highlights, err := s.ListHighlights(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to list highlights: %w", err)
			}
			if output == OutputJSON {
				return printJSON(cmd.OutOrStdout(), highlights)
			}
			printHighlights(cmd.OutOrStdout(), highlights)
			return nil
		},
	})
	return command
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func printHighlights(out io.Writer, highlights []bookrise.Highlight) {
	if len(highlights) == 0 {
		_, _ = fmt.Fprintln(out, "No highlights found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPAGE\tTEXT\tNOTE")
	for _, highlight := range highlights {
		page := "-"
		if highlight.Page != nil {
			page = strconv.Itoa(*highlight.Page)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			highlight.ID,
			page,
			truncate(highlight.TextContent, maxTextWidth),
			truncate(highlight.Note, maxTextWidth))
	}
	_ = w.Flush()
}
