// Package servecmder provides the clerk API server cobra command.
package servecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/counterware/clerk/pkg/bootstrap"
	"github.com/counterware/clerk/pkg/config"
	"github.com/counterware/clerk/pkg/logger"
)

const serveLongDesc string = `Run the clerk API server.

The server exposes the conversational assistant over HTTP:
  POST /chat                   start a turn
  POST /resume                 answer a pending interrupt
  GET  /threads/:id/history    read a thread's transcript

Configuration comes from config.toml, CLERK_* environment variables, and
flags, in ascending precedence.

Examples:
  clerk serve
  clerk serve --listen :9090
  CLERK_LLM_API_KEY=sk-... clerk serve`

const serveShortDesc string = "Run the clerk API server"

type serveCommander struct {
	listen string
	debug  bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd, configDir)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for API server to listen on")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command, configDir string) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	if c.listen != "" {
		v.Set("api.listen", c.listen)
	}
	cfg := config.FromViper(v)

	rt, err := bootstrap.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("wiring runtime: %w", err)
	}
	defer rt.Close()

	server := rt.NewServer(cfg, log)
	return server.Run()
}
