package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/infra/feed"

	"github.com/labstack/echo/v4"
)

// 接続が切られないように送るコメント行の間隔
var sseKeepAlive = 25 * time.Second

type sseWriter struct {
	c echo.Context
}

func startSSE(c echo.Context) *sseWriter {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set(echo.HeaderCacheControl, "no-cache")
	h.Set(echo.HeaderConnection, "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()
	return &sseWriter{c: c}
}

func (w *sseWriter) send(event string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.c.Response(), "event: %s\ndata: %s\n\n", event, b); err != nil {
		return err
	}
	w.c.Response().Flush()
	return nil
}

func (w *sseWriter) ping() error {
	if _, err := fmt.Fprint(w.c.Response(), ": ping\n\n"); err != nil {
		return err
	}
	w.c.Response().Flush()
	return nil
}

// 最初に1回、以後は変更通知ごとに読み直して送る。クライアントが切るまで続く
func streamSnapshots(c echo.Context, sub feed.Subscriber, topic feed.Topic, load func(ctx context.Context) (interface{}, error)) error {
	//読む前に購読して取りこぼしを防ぐ
	events, cancel := sub.Subscribe(topic)
	defer cancel()

	ctx := c.Request().Context()
	w := startSSE(c)

	push := func() error {
		v, err := load(ctx)
		if err != nil {
			_, body := errorBody(err)
			return w.send("error", body)
		}
		return w.send(string(topic), v)
	}

	if err := push(); err != nil {
		return nil
	}

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-events:
			if err := push(); err != nil {
				return nil
			}
		case <-ticker.C:
			if err := w.ping(); err != nil {
				return nil
			}
		}
	}
}
