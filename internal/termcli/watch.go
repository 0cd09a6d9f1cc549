package termcli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"text/tabwriter"

	"adisyon-backend/internal/client"
	"adisyon-backend/internal/clock"
	"adisyon-backend/internal/feed"
	"adisyon-backend/internal/models"
	"adisyon-backend/internal/terminalsync"

	"github.com/spf13/cobra"
)

// bell: terminal zili. Operatör bir kez Enter'a basana kadar sessizdir.
type bell struct {
	w       io.Writer
	allowed atomic.Bool
}

func (b *bell) Play() error {
	if !b.allowed.Load() {
		return terminalsync.ErrPlaybackBlocked
	}
	_, err := io.WriteString(b.w, "\a")
	return err
}

type session struct {
	cfg  *FileConfig
	api  *client.Client
	user *client.LoginUser
}

func login(ctx context.Context, cfg *FileConfig) (*session, error) {
	api := client.New(cfg.Server)
	user, err := api.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("giriş başarısız: %w", err)
	}
	api.BusinessID = cfg.BusinessID
	if user.BusinessID != nil {
		api.BusinessID = *user.BusinessID
	}
	if api.BusinessID == 0 {
		return nil, fmt.Errorf("işletme belirlenemedi: super_admin için business_id gerekli")
	}
	slog.Debug("giriş yapıldı", "user", user.Name, "role", user.Role, "business", api.BusinessID)
	return &session{cfg: cfg, api: api, user: user}, nil
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Aktif siparişleri canlı izler",
		Long: `Aktif sipariş listesini değişiklik akışına abone olarak güncel tutar.
Akış koparsa periyodik sorguya düşer ve yeniden bağlanmayı dener.
Mutfak terminalinde yeni siparişte zil çalar; zili açmak için bir kez Enter'a basın.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.resolve()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runWatch(ctx context.Context, cfg *FileConfig, in io.Reader, out io.Writer) error {
	s, err := login(ctx, cfg)
	if err != nil {
		return err
	}
	kind, _ := terminalsync.ParseKind(cfg.Kind)

	tc := terminalsync.Context{
		BusinessID: s.api.BusinessID,
		OperatorID: s.user.ID,
		Role:       s.user.Role,
		Kind:       kind,
	}
	opts := []terminalsync.Option{terminalsync.WithLogger(slog.Default())}

	var b *bell
	var alert *terminalsync.NotificationChannel
	if kind == terminalsync.KindKitchen {
		b = &bell{w: out}
		alert = terminalsync.NewNotificationChannel(b)
		opts = append(opts, terminalsync.WithAlert(alert))
	}

	source := feed.NewClient(cfg.Server, s.api.Token)
	term := terminalsync.New(tc, cfg.SyncSettings(), s.api, source, clock.Real{}, opts...)
	term.Observe(func(state terminalsync.ConnState, orders []models.Order) {
		printOrders(out, state, orders)
	})

	if alert != nil {
		go func() {
			sc := bufio.NewScanner(in)
			for sc.Scan() {
				if n := alert.Missed(); n > 0 {
					fmt.Fprintf(out, "Kaçırılan uyarı: %d\n", n)
				}
				b.allowed.Store(true)
				alert.Interact()
			}
		}()
	}

	slog.Info("terminal başlatıldı", "kind", kind, "server", cfg.Server)
	term.Mount(ctx)
	<-ctx.Done()
	term.Teardown()
	slog.Info("terminal kapatıldı")
	return nil
}

func printOrders(w io.Writer, state terminalsync.ConnState, orders []models.Order) {
	fmt.Fprintf(w, "\n[%s] %d aktif sipariş\n", state, len(orders))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FOLYO\tDURUM\tSERVİS\tMASA\tKALEM\tTUTAR")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			o.Folio, o.Status, o.ServiceType, o.TableLabel, len(o.Items), o.Total.StringFixed(2))
	}
	_ = tw.Flush()
}
