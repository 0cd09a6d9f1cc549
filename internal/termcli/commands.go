package termcli

import (
	"fmt"
	"strconv"

	"adisyon-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func NewAdvanceCommand(rootOpts *RootOptions) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:           "advance <order-id>",
		Short:         "Siparişi bir sonraki duruma geçirir",
		Example:       `  adisyon-terminal advance 42 --from in_prep`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("geçersiz sipariş id: %q", args[0])
			}
			status, err := models.ParseOrderStatus(from)
			if err != nil {
				return err
			}
			cfg, err := rootOpts.resolve()
			if err != nil {
				return err
			}
			s, err := login(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			o, err := s.api.Advance(cmd.Context(), uint(id), status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", o.Folio, status, o.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "terminalin gördüğü mevcut durum (zorunlu)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "session",
		Short:         "Açık kasa oturumunun mutabakat özetini gösterir",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.resolve()
			if err != nil {
				return err
			}
			s, err := login(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			sess, err := s.api.CurrentSession(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := s.api.Snapshot(cmd.Context(), sess.ID)
			if err != nil {
				return err
			}
			printSnapshot(cmd, snap)
			return nil
		},
	}
}

func printSnapshot(cmd *cobra.Command, snap *models.ReconciliationSnapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Oturum #%d (%s)\n", snap.SessionID, snap.ComputedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "  Açılış:          %s\n", snap.OpeningFloat.StringFixed(2))
	fmt.Fprintf(out, "  Nakit satış:     %s\n", snap.SalesByMethod.Cash.StringFixed(2))
	fmt.Fprintf(out, "  Kart satış:      %s\n", snap.SalesByMethod.Card.StringFixed(2))
	fmt.Fprintf(out, "  Havale satış:    %s\n", snap.SalesByMethod.Transfer.StringFixed(2))
	fmt.Fprintf(out, "  Kasa giriş/çıkış: +%s / -%s\n", snap.ManualCashIn.StringFixed(2), snap.ManualCashOut.StringFixed(2))
	fmt.Fprintf(out, "  İade / iptal:    %d / %d\n", snap.RefundCount, snap.VoidCount)
	fmt.Fprintf(out, "  Beklenen nakit:  %s\n", snap.ExpectedCash.StringFixed(2))
	for _, w := range snap.Warnings {
		fmt.Fprintf(out, "  [%s] %s\n", w.Severity, w.Message)
	}
}

func NewOpenCommand(rootOpts *RootOptions) *cobra.Command {
	var float string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Kasa oturumu açar",
		Long: `Operatör adına yeni kasa oturumu açar. --float verilmezse sunucunun
önerdiği açılış fonu kullanılır.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.resolve()
			if err != nil {
				return err
			}
			s, err := login(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var amount decimal.Decimal
			if float != "" {
				if amount, err = decimal.NewFromString(float); err != nil {
					return fmt.Errorf("geçersiz tutar: %q", float)
				}
			} else {
				d, err := s.api.TerminalDefaults(cmd.Context())
				if err != nil {
					return err
				}
				amount = d.DefaultFloat
			}

			sess, err := s.api.OpenSession(cmd.Context(), amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Oturum #%d açıldı, açılış fonu %s\n", sess.ID, sess.OpeningFloat.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&float, "float", "", "açılış fonu")
	return cmd
}
