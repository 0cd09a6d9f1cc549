package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"adisyon-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const (
	EventReady  = "ready"
	EventChange = "change"
)

// writeFrame: tek bir SSE çerçevesi yazar ve flush eder
func writeFrame(w *bufio.Writer, event string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}

// -------------------------------------------------
// GET /api/events?collections=orders,payments
// -------------------------------------------------
func EventsHandler(hub *Hub, heartbeat time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFrom(c)
		if err != nil {
			return err
		}

		scope := Scope{BusinessID: actor.BusinessID}
		if raw := c.Query("collections"); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				col, err := ParseCollection(part)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, err.Error())
				}
				scope.Collections = append(scope.Collections, col)
			}
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		watcher := hub.Watch(scope, defaultBuffer)
		operatorID := actor.OperatorID

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer watcher.Close()

			if err := writeFrame(w, EventReady, []byte(`{}`)); err != nil {
				return
			}

			ticker := time.NewTicker(heartbeat)
			defer ticker.Stop()

			for {
				select {
				case ev, ok := <-watcher.C():
					if !ok {
						return
					}
					data, err := json.Marshal(ev)
					if err != nil {
						log.Printf("[WARN] olay serileştirilemedi: %v", err)
						continue
					}
					if err := writeFrame(w, EventChange, data); err != nil {
						return
					}
				case <-ticker.C:
					// yorum satırı: bağlantı kopmuşsa flush hata verir
					if _, err := w.WriteString(": ping\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						if n := watcher.Dropped(); n > 0 {
							log.Printf("[WARN] olay akışı kapandı (operatör %d, %d olay düştü)", operatorID, n)
						}
						return
					}
				}
			}
		})

		return nil
	}
}
