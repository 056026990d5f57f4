package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Ajayos/Server/internal/config"
	"github.com/Ajayos/Server/internal/tui"
)

var (
	topURL      string
	topToken    string
	topInterval time.Duration
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Launch interactive vitals monitor",
	Long:  "Launch an interactive terminal UI that polls a running server's vitals endpoint.",
	RunE:  runTop,
}

func init() {
	topCmd.Flags().StringVar(&topURL, "url", "", "Vitals endpoint URL (default: derived from config)")
	topCmd.Flags().StringVar(&topToken, "token", "", "Bearer token for a guarded endpoint")
	topCmd.Flags().DurationVar(&topInterval, "interval", 2*time.Second, "Poll interval")
	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	url := topURL
	if url == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		url = vitalsURL(cfg)
	}

	model := tui.NewModel(tui.NewClient(url, topToken), topInterval)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// vitalsURL derives the poll target from the serve configuration.
func vitalsURL(cfg *config.Config) string {
	host := cfg.HTTP.Host
	if host == "" {
		host = "127.0.0.1"
	}
	scheme := "http"
	if cfg.TLS.Present() {
		scheme = "https"
	}
	path := cfg.Vitals.Path
	if path == "" {
		path = "/debug/vitals"
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, strconv.Itoa(cfg.HTTP.Port)), path)
}
