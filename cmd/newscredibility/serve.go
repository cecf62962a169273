package main

import (
	"github.com/spf13/cobra"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the headline scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := bootstrap(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer closeApp(application, logger)

			logger.Info("server starting")
			return application.Serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}
