package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/lcamargo/docchat/internal/model"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs <collection-id>",
	Short: "List documents in a collection",
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
		files, err := c.ListDocuments(ctx, args[0], token)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(files)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSIZE\tCHUNKS")
		for _, f := range files {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", f.ID, f.Filename, f.Size, f.ChunkCount)
		}
		return w.Flush()
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <collection-id> <file>...",
	Short: "Upload documents to a collection",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []model.LocalFile
		for _, p := range args[1:] {
			info, err := os.Stat(p)
			if err != nil {
				return err
			}
			files = append(files, model.LocalFile{
				Filename: filepath.Base(p),
				Path:     p,
				Size:     info.Size(),
			})
		}

		c, ctx, cancel, err := newClient()
		if err != nil {
			return err
		}
		defer cancel()

		token, err := resolveToken(ctx, c, args[0])
		if err != nil {
			return err
		}
		result, err := c.Upload(ctx, args[0], files, token)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(result)
		}
		fmt.Printf("uploaded %d file(s), %d chunk(s) indexed\n",
			len(result.FilesUploaded), result.DocumentsIndexed)
		for _, f := range result.FailedFiles {
			fmt.Fprintf(os.Stderr, "failed: %s: %s\n", f.Filename, f.Error)
		}
		return nil
	},
}
