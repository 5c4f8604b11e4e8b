package cmd

import (
	"dispatchq/internal/api"
	"dispatchq/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func apiCmd() *cobra.Command {
	var port int
	var command = &cobra.Command{
		Use:   "api",
		Short: "Start API server",
		Run: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			cfg := config.Load()
			log.Info().Msgf("API server using state key: %s, ceiling: %d, rate limit: %d",
				cfg.Redis.StateKey, cfg.Queue.Ceiling, cfg.Queue.RateLimit)
			server := api.NewServer()
			server.Run(port)
		},
	}

	command.Flags().IntVarP(&port, "port", "p", 8080, "Port to run the server on")
	return command
}
