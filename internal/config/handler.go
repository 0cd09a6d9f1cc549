package config

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TerminalDefaults: terminallerin açılışta okuduğu öneri değerler.
// Kasa politikası değildir; tolerans ve fon işletme kaydından uygulanır.
type TerminalDefaults struct {
	Debounce         string          `json:"debounce"`
	PollInterval     string          `json:"poll_interval"`
	SubscribeTimeout string          `json:"subscribe_timeout"`
	DefaultFloat     decimal.Decimal `json:"default_float"`
	DefaultTolerance decimal.Decimal `json:"default_tolerance"`
}

func (c *Config) TerminalDefaults() TerminalDefaults {
	return TerminalDefaults{
		Debounce:         c.SyncDebounce.String(),
		PollInterval:     c.SyncPollInterval.String(),
		SubscribeTimeout: c.SyncSubscribeTimeout.String(),
		DefaultFloat:     c.UIDefaultFloat,
		DefaultTolerance: c.UIDefaultTolerance,
	}
}

// GET /api/terminal/defaults
func TerminalDefaultsHandler(cfg *Config) fiber.Handler {
	defaults := cfg.TerminalDefaults()
	return func(c *fiber.Ctx) error {
		return c.JSON(defaults)
	}
}
