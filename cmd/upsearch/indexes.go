package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/upsearch"
)

func indexesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "List or delete indexes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List index names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			names, err := s.client.ListIndexes(s.ctx)
			if err != nil {
				return err
			}
			return printJSON(s.out, names)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <index>...",
		Short: "Delete indexes with all their documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.client.DeleteIndexes(s.ctx, args...); err != nil {
				return err
			}
			return printJSON(s.out, map[string]any{"deleted": args})
		},
	})

	return cmd
}

func infoCmd(g *globalFlags) *cobra.Command {
	var human bool

	cmd := &cobra.Command{
		Use:   "info [index]",
		Short: "Show database or index counters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			if len(args) == 1 {
				info, err := s.client.Index(args[0]).Info(s.ctx)
				if err != nil {
					return err
				}
				return printJSON(s.out, info)
			}

			info, err := s.client.Info(s.ctx)
			if err != nil {
				return err
			}
			if human {
				return printDatabaseInfo(s.out, info)
			}
			return printJSON(s.out, info)
		},
	}

	cmd.Flags().BoolVar(&human, "human", false, "Print a human readable summary")

	return cmd
}

func printDatabaseInfo(w io.Writer, info upsearch.DatabaseInfo) error {
	state := "settled"
	if !info.Settled() {
		state = "indexing"
	}
	if _, err := fmt.Fprintf(w, "documents: %s (%s pending, %s)\ndisk size: %s\n",
		humanize.Comma(int64(info.DocumentCount)),
		humanize.Comma(int64(info.PendingDocumentCount)),
		state,
		humanize.Bytes(uint64(max(info.DiskSizeBytes, 0))),
	); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	for _, name := range slices.Sorted(maps.Keys(info.Indexes)) {
		ix := info.Indexes[name]
		if _, err := fmt.Fprintf(w, "  %s: %s (%s pending)\n", name,
			humanize.Comma(int64(ix.DocumentCount)),
			humanize.Comma(int64(ix.PendingDocumentCount)),
		); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
