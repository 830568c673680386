package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ask-web/internal/usecase"
)

func newAskCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			svc, err := newAskService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out, err := svc.Ask(cmd.Context(), usecase.AskInput{Question: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Answer)
			return nil
		},
	}
}
