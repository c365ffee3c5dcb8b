// Package cli implements the docchatctl command-line interface, a
// one-shot scripting companion to the interactive TUI.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lcamargo/docchat/internal/backend"
	"github.com/lcamargo/docchat/internal/config"
	"github.com/lcamargo/docchat/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	backendURL string
	jsonOut    bool
	accessCode string
)

var rootCmd = &cobra.Command{
	Use:           "docchatctl",
	Short:         "Scriptable client for a document-grounded chat backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&accessCode, "code", "", "access code for private collections")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(healthCmd)
}

// newClient builds a backend client from config, env, and flags.
func newClient() (*backend.Client, context.Context, context.CancelFunc, error) {
	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		return nil, nil, nil, err
	}
	config.ApplyEnv(cfg)
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	c := backend.New(cfg.BackendURL, timeout, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return c, ctx, cancel, nil
}

// resolveToken trades an access code for a bearer token when one was
// given; public collections need neither.
func resolveToken(ctx context.Context, c *backend.Client, collectionID string) (string, error) {
	if accessCode == "" {
		return "", nil
	}
	res, err := c.Unlock(ctx, collectionID, accessCode)
	if err != nil {
		return "", fmt.Errorf("unlock: %w", err)
	}
	return res.AccessToken, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
