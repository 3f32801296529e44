package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
)

func newChatCommand() *cobra.Command {
	var (
		noStream   bool
		contextIDs []string
	)
	command := &cobra.Command{
		Use:   "chat <book id> <prompt...>",
		Short: "Ask a question about a book",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeSession, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer closeSession()

			out := cmd.OutOrStdout()
			request := bookrise.ChatRequest{
				BookID:     args[0],
				Prompt:     strings.Join(args[1:], " "),
				ContextIDs: contextIDs,
			}
			var onChunk bookrise.ChunkHandler
			if !noStream {
				onChunk = func(chunk string) {
					_, _ = fmt.Fprint(out, chunk)
				}
			}

			response, err := s.Chat(ctx, request, onChunk)
			if err != nil {
				if !noStream {
					_, _ = fmt.Fprintln(out)
				}
				return fmt.Errorf("chat failed: %w", err)
			}
			if noStream {
				_, _ = fmt.Fprint(out, response.Answer)
			}
			_, _ = fmt.Fprintln(out)
			printCitations(out, response)
			return nil
		},
	}
	command.Flags().BoolVar(&noStream, "no-stream", false, "Wait for the whole answer instead of streaming it")
	command.Flags().StringSliceVar(&contextIDs, "context-id", nil, "Paragraph ids to give the assistant as context")
	return command
}

func printCitations(out io.Writer, response *bookrise.ChatResponse) {
	faint := color.New(color.Faint)
	if len(response.CitedChapters) > 0 {
		chapters := make([]string, 0, len(response.CitedChapters))
		for _, chapter := range response.CitedChapters {
			chapters = append(chapters, strconv.Itoa(chapter))
		}
		_, _ = faint.Fprintf(out, "Chapters: %s\n", strings.Join(chapters, ", "))
	}
	if len(response.CitedParagraphIDs) > 0 {
		_, _ = faint.Fprintf(out, "Paragraphs: %s\n", strings.Join(response.CitedParagraphIDs, ", "))
	}
}
