package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/pkg/clients"
)

const notificationsPath = "/api/notifications"

type HTTPSender struct {
	url    string
	client clients.HTTPClientI
}

func NewHTTPSender(baseURL string, client clients.HTTPClientI) *HTTPSender {
	return &HTTPSender{
		url:    strings.TrimRight(baseURL, "/") + notificationsPath,
		client: client,
	}
}

func (s *HTTPSender) Send(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	status, _, err := s.client.Post(s.url, headers, body)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("notification service responded with status %d", status)
	}
	return nil
}
