package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/upsearch"
)

func searchCmd(g *globalFlags) *cobra.Command {
	var (
		limit     int
		filter    string
		reranking bool
	)

	cmd := &cobra.Command{
		Use:   "search <index> <query>",
		Short: "Search an index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			hits, err := s.client.Index(args[0]).Search(s.ctx, args[1],
				upsearch.WithLimit(limit),
				upsearch.WithFilter(filter),
				upsearch.WithReranking(reranking),
			)
			if err != nil {
				return err
			}
			return printJSON(s.out, hits)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of hits")
	cmd.Flags().StringVar(&filter, "filter", "", "Filter expression")
	cmd.Flags().BoolVar(&reranking, "reranking", false, "Enable reranking")

	return cmd
}

func fetchCmd(g *globalFlags) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "fetch <index> [id...]",
		Short: "Fetch documents by id or id prefix",
		Long: `Fetch documents by id or id prefix.

With ids the output is positional: ids that do not exist print as null.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := upsearch.FetchRequest{IDs: args[1:]}
			if cmd.Flags().Changed("prefix") {
				req = upsearch.FetchRequest{Prefix: &prefix}
			}
			if len(req.IDs) == 0 && req.Prefix == nil {
				return errors.New("fetch needs ids or --prefix")
			}

			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			docs, err := s.client.Index(args[0]).Fetch(s.ctx, req)
			if err != nil {
				return err
			}
			return printJSON(s.out, docs)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Fetch every document whose id starts with prefix")

	return cmd
}

func deleteCmd(g *globalFlags) *cobra.Command {
	var prefix, filter string

	cmd := &cobra.Command{
		Use:   "delete <index> [id...]",
		Short: "Delete documents by id, id prefix or filter",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := upsearch.DeleteRequest{IDs: args[1:]}
			if cmd.Flags().Changed("prefix") {
				req.Prefix = &prefix
			}
			if cmd.Flags().Changed("filter") {
				req.Filter = &filter
			}

			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.client.Index(args[0]).Delete(s.ctx, req)
			if err != nil {
				return err
			}
			return printJSON(s.out, map[string]any{"index": args[0], "deleted": n})
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Delete documents whose id starts with prefix")
	cmd.Flags().StringVar(&filter, "filter", "", "Delete documents matching a filter expression")

	return cmd
}

func rangeCmd(g *globalFlags) *cobra.Command {
	var (
		cursor string
		limit  int
		prefix string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "range <index>",
		Short: "Page through the documents of an index",
		Long: `Page through the documents of an index.

Without --all one page is printed together with the cursor of the next page.
With --all every document is printed as one JSON line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			req := upsearch.RangeRequest{Cursor: cursor, Limit: limit}
			if cmd.Flags().Changed("prefix") {
				req.Prefix = &prefix
			}
			idx := s.client.Index(args[0])

			if !all {
				page, err := idx.Range(s.ctx, req)
				if err != nil {
					return err
				}
				return printJSON(s.out, page)
			}

			if req.Limit == 0 {
				req.Limit = s.cfg.Bulk.PageSize
			}
			enc := json.NewEncoder(s.out)
			for doc, err := range idx.All(s.ctx, req) {
				if err != nil {
					return err
				}
				if err := enc.Encode(doc); err != nil {
					return fmt.Errorf("encode output: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cursor, "cursor", "", "Cursor returned by the previous page")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (default: 1, or bulk.page_size with --all)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only documents whose id starts with prefix")
	cmd.Flags().BoolVar(&all, "all", false, "Follow cursors until the end")

	return cmd
}

func resetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <index>",
		Short: "Remove every document of an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, g)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.client.Index(args[0]).Reset(s.ctx); err != nil {
				return err
			}
			return printJSON(s.out, map[string]any{"index": args[0], "reset": true})
		},
	}
}
