package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsCredibility/internal/usecase"
)

func headlinesCMD(cfgPath *string) *cobra.Command {
	var country, category string
	var limit int

	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "Print current top headlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := bootstrap(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer closeApp(application, logger)

			batch, err := application.Headlines(cmd.Context(), usecase.HeadlineTarget{Country: country, Category: category}, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, a := range batch.Articles {
				fmt.Fprintf(out, "%s | %s | %s\n", a.SourceName, a.Title, a.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&country, "country", usecase.DefaultCountry, "two-letter country code")
	cmd.Flags().StringVar(&category, "category", "", "headline category")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of headlines (max 100)")

	return cmd
}
