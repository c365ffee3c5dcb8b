package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lcamargo/docchat/internal/model"
	"github.com/spf13/cobra"
)

var (
	listPage       int
	listPageSize   int
	createDesc     string
	createPrivate  bool
	createCodeFlag string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := newClient()
		if err != nil {
			return err
		}
		defer cancel()

		page, err := c.ListCollections(ctx, listPage, listPageSize)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(page)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPUBLIC\tDOCS\tMSGS")
		for _, col := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%d\n",
				col.ID, col.Name, col.IsPublic, col.DocumentCount, col.MessageCount)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("page %d of %d (%d total)\n",
			page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if createPrivate && createCodeFlag == "" {
			return fmt.Errorf("private collections need --access-code")
		}

		c, ctx, cancel, err := newClient()
		if err != nil {
			return err
		}
		defer cancel()

		req := model.CreateCollectionRequest{
			Name:        args[0],
			Description: createDesc,
			IsPublic:    !createPrivate,
		}
		if createPrivate {
			req.Code = createCodeFlag
		}

		col, err := c.CreateCollection(ctx, req)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(col)
		}
		fmt.Printf("created %s (%s)\n", col.Name, col.ID)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <collection-id>",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := newClient()
		if err != nil {
			return err
		}
		defer cancel()

		token, err := resolveToken(ctx, c, args[0])
		if err != nil {
			return err
		}
		if err := c.DeleteCollection(ctx, args[0], token); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 20, "items per page")
	createCmd.Flags().StringVar(&createDesc, "description", "", "collection description")
	createCmd.Flags().BoolVar(&createPrivate, "private", false, "require an access code")
	createCmd.Flags().StringVar(&createCodeFlag, "access-code", "", "access code for the new private collection")
}
