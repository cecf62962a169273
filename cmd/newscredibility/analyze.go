package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"NewsCredibility/internal/httpapi"
	"NewsCredibility/internal/usecase"
)

func analyzeCMD(cfgPath *string) *cobra.Command {
	var asJSON bool
	var withReport bool

	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Analyze news text; reads stdin when no text is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}

			application, logger, err := bootstrap(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer closeApp(application, logger)

			req := usecase.AnalyzeRequest{Text: text}
			out := cmd.OutOrStdout()

			if withReport {
				analysis, report, err := application.Report(cmd.Context(), req)
				if err != nil {
					return err
				}
				if asJSON {
					return httpapi.EncodeAnalysis(out, analysis, report)
				}
				fmt.Fprintln(out, usecase.Summary(analysis))
				fmt.Fprintln(out)
				fmt.Fprintln(out, report)
				return nil
			}

			analysis, err := application.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return httpapi.EncodeAnalysis(out, analysis, "")
			}
			fmt.Fprintln(out, usecase.Summary(analysis))
			for i, sa := range analysis.Articles {
				if i == 5 {
					break
				}
				fmt.Fprintf(out, "  %.3f  %s (%s)\n", sa.RelevanceScore, sa.Article.Title, sa.Article.SourceName)
			}
			if len(analysis.Flags) > 0 {
				fmt.Fprintf(out, "flags: %s\n", strings.Join(analysis.Flags, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	cmd.Flags().BoolVar(&withReport, "report", false, "also generate the long-form report")

	return cmd
}
