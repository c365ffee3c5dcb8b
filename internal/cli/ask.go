package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askCollection string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question, optionally against a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := newClient()
		if err != nil {
			return err
		}
		defer cancel()

		if askCollection == "" {
			ans, err := c.AskSession(ctx, args[0], "")
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(ans)
			}
			fmt.Println(ans.Text())
			return nil
		}

		token, err := resolveToken(ctx, c, askCollection)
		if err != nil {
			return err
		}
		ans, err := c.Ask(ctx, askCollection, args[0], 4, token)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(ans)
		}
		fmt.Println(ans.Text())
		return nil
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <collection-id> <code>",
	Short: "Trade an access code for a bearer token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := newClient()
		if err != nil {
			return err
		}
		defer cancel()

		res, err := c.Unlock(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(res)
		}
		fmt.Println(res.AccessToken)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend reachability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ctx, cancel, err := newClient()
		if err != nil {
			return err
		}
		defer cancel()

		if err := c.Health(ctx); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askCollection, "collection", "", "collection id to ask against")
}
