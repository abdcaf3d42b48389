package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSavedCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved filters",
	}
	cmd.AddCommand(
		newSavedListCmd(c),
		newSavedAddCmd(c),
		newSavedDeleteCmd(c),
		newSavedExportCmd(c),
		newSavedImportCmd(c),
	)
	return cmd
}

func newSavedListCmd(c *cli) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := c.openSaved()
			if err != nil {
				return err
			}

			filters := mgr.GetAll()
			if !all && c.cfg.Database.Table != "" {
				filters = mgr.ForTable(c.cfg.Database.Schema, c.cfg.Database.Table)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTABLE\tUSED\tFILTER")
			for _, f := range filters {
				table := f.Table
				if f.Schema != "" && f.Table != "" {
					table = f.Schema + "." + f.Table
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", f.ID, f.Name, table, f.UsageCount, f.Filter)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list filters for every table")
	return cmd
}

func newSavedAddCmd(c *cli) *cobra.Command {
	var description, tags string

	cmd := &cobra.Command{
		Use:   "add NAME [file]",
		Short: "Save a filter tree under a name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDocument(cmd, args[1:])
			if err != nil {
				return err
			}
			mgr, err := c.openSaved()
			if err != nil {
				return err
			}

			var tagList []string
			for _, t := range strings.Split(tags, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tagList = append(tagList, t)
				}
			}

			f, err := mgr.Add(args[0], description, c.cfg.Database.Schema, c.cfg.Database.Table, string(data), tagList)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%s)\n", f.Name, f.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	return cmd
}

func newSavedDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID|NAME",
		Short: "Delete a saved filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := c.openSaved()
			if err != nil {
				return err
			}
			id := args[0]
			if f, err := mgr.GetByName(id); err == nil {
				id = f.ID
			}
			if err := mgr.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newSavedExportCmd(c *cli) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved filters to CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := c.openSaved()
			if err != nil {
				return err
			}

			var paths []string
			if output != "" {
				paths = append(paths, output)
			}

			var path string
			switch format {
			case "csv":
				path, err = mgr.ExportToCSV(paths...)
			case "json":
				path, err = mgr.ExportToJSON(paths...)
			default:
				return fmt.Errorf("unsupported export format: %s", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "export format (csv or json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	return cmd
}

func newSavedImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import saved filters from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := c.openSaved()
			if err != nil {
				return err
			}
			n, err := mgr.Import(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d filters\n", n)
			return nil
		},
	}
}
