package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Client: /api/events uç noktasına SSE ile abone olur.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, HTTP: &http.Client{}}
}

type clientSubscription struct {
	cancel context.CancelFunc
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

func (s *clientSubscription) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.cancel()
	})
}

func (s *clientSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Subscribe: bağlantıyı arka planda kurar; sonuç Handler üzerinden bildirilir.
func (c *Client) Subscribe(scope Scope, h Handler) (Subscription, error) {
	q := url.Values{}
	if len(scope.Collections) > 0 {
		cols := make([]string, len(scope.Collections))
		for i, col := range scope.Collections {
			cols[i] = string(col)
		}
		q.Set("collections", strings.Join(cols, ","))
	}

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/events?"+q.Encode(), nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if scope.BusinessID != 0 {
		req.Header.Set("X-Business-ID", strconv.FormatUint(uint64(scope.BusinessID), 10))
	}

	sub := &clientSubscription{cancel: cancel}
	go func() {
		err := c.run(req, h)
		if sub.isClosed() {
			return
		}
		cancel()
		if h.OnClose != nil {
			h.OnClose(err)
		}
	}()
	return sub, nil
}

func (c *Client) run(req *http.Request, h Handler) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("olay akışı reddedildi: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return ReadStream(resp.Body, h)
}

// ReadStream: SSE çerçevelerini okuyup Handler'a dağıtır. Akış bitince io.ErrUnexpectedEOF döner.
func ReadStream(r io.Reader, h Handler) error {
	br := bufio.NewReader(r)
	var event string
	var data strings.Builder

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if err := dispatch(event, data.String(), h); err != nil {
				return err
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// yorum / heartbeat
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
}

func dispatch(event, data string, h Handler) error {
	switch event {
	case "":
		return nil
	case EventReady:
		if h.OnReady != nil {
			h.OnReady()
		}
	case EventChange:
		var ev Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("olay çözümlenemedi: %w", err)
		}
		if h.OnEvent != nil {
			h.OnEvent(ev)
		}
	}
	return nil
}
