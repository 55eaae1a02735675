package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newMemoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Search or save memories without the model",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search the current user's memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := a.adapter.Search(cmd.Context(), strings.Join(args, " "), a.cfg.UserID)
			return printJSON(cmd, resp)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save <content>",
		Short: "Save a memory for the current user",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := a.adapter.Save(cmd.Context(), strings.Join(args, " "), a.cfg.UserID)
			return printJSON(cmd, resp)
		},
	})

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
