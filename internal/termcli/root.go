// Package termcli, POS ve mutfak terminallerinin komut satırı arayüzü.
package termcli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type RootOptions struct {
	Verbose    bool
	ConfigPath string

	// config dosyasını ezer
	Server string
	Email  string
	Kind   string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "adisyon-terminal",
		Short: "Adisyon POS / mutfak terminali",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "ayrıntılı log")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "terminal.yaml", "config dosyası")
	cmd.PersistentFlags().StringVar(&opts.Server, "server", "", "sunucu adresi")
	cmd.PersistentFlags().StringVar(&opts.Email, "email", "", "operatör e-postası")
	cmd.PersistentFlags().StringVar(&opts.Kind, "kind", "", "terminal türü (pos|kitchen)")

	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewAdvanceCommand(opts))
	cmd.AddCommand(NewOpenCommand(opts))
	cmd.AddCommand(NewSessionCommand(opts))

	return cmd
}

// resolve: dosya + flag birleşimi
func (o *RootOptions) resolve() (*FileConfig, error) {
	cfg, err := LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.Server != "" {
		cfg.Server = o.Server
	}
	if o.Email != "" {
		cfg.Email = o.Email
	}
	if o.Kind != "" {
		cfg.Kind = o.Kind
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
