package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billexact/billexact/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local dashboard API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to the configured server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	store := openStore()

	serverCfg := cfg
	if serveAddr != "" {
		serverCfg.Server.Addr = serveAddr
	}

	if err := web.NewServer(store, serverCfg).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return nil
}
