package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/multifilter/internal/filter"
)

// readDocument reads the file named by args[0], or stdin when there is none
// or it is "-"
func readDocument(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

// decodeDocument validates data when asked and decodes it into a new group
func (c *cli) decodeDocument(data []byte, validate bool) (*filter.Group, error) {
	if validate {
		if err := filter.Validate(data); err != nil {
			return nil, err
		}
	}
	g := filter.NewGroup(filter.WithOperators(c.operators()), filter.WithLogger(c.logger))
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return g, nil
}

func newEncodeCmd(c *cli) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Decode a filter tree into rows and print its canonical encoding",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			g, err := c.decodeDocument(data, validate)
			if err != nil {
				return err
			}
			out, err := g.MarshalJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "reject documents that do not match the filter tree schema")
	return cmd
}

func newSQLCmd(c *cli) *cobra.Command {
	var validate bool
	var limit int

	cmd := &cobra.Command{
		Use:   "sql [file]",
		Short: "Print the parameterized SQL for a filter tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			g, err := c.decodeDocument(data, validate)
			if err != nil {
				return err
			}

			b := filter.NewBuilder(c.operators())
			var sql string
			var params []any
			if c.cfg.Database.Table != "" {
				sql, params, err = b.BuildQuery(c.cfg.Database.Schema, c.cfg.Database.Table, g.Encode(), limit)
			} else {
				sql, params, err = b.BuildWhere(g.Encode())
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, sql)
			for i, p := range params {
				fmt.Fprintf(w, "$%d = %v\n", i+1, p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "reject documents that do not match the filter tree schema")
	cmd.Flags().IntVar(&limit, "limit", 0, "LIMIT for the generated SELECT (0 for none)")
	return cmd
}
