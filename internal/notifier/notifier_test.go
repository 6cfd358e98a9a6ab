package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/servicehub/internal/domain"
	"github.com/GlebRadaev/servicehub/pkg/clients"
)

var received = domain.Notification{
	UserID:  "P1",
	Type:    domain.NotificationPaymentReceived,
	Title:   "Payment received",
	Message: "You received 80.00 for job J1.",
	Data:    map[string]string{"jobId": "J1", "amount": "80.00"},
}

func TestDispatcher_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)

	d, err := New(sender, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sender.EXPECT().Send(gomock.Any(), received).DoAndReturn(
		func(ctx context.Context, _ domain.Notification) error {
			defer close(done)
			assert.NoError(t, ctx.Err(), "delivery must outlive the request")
			return errors.New("broker down")
		})

	d.Notify(ctx, received)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
	require.NoError(t, d.Close(time.Second))
}

func TestDispatcher_DropsWhenSaturated(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)

	d, err := New(sender, 1)
	require.NoError(t, err)

	release := make(chan struct{})
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domain.Notification) error {
			<-release
			return nil
		}).Times(1)

	start := time.Now()
	d.Notify(context.Background(), received)
	d.Notify(context.Background(), received)
	assert.Less(t, time.Since(start), time.Second, "Notify must not block")

	close(release)
	require.NoError(t, d.Close(time.Second))
}

func TestKafkaSender_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	writer := NewMockKafkaWriter(ctrl)
	sender := &KafkaSender{writer: writer, topic: "user-notifications"}

	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msgs ...kafka.Message) error {
			require.Len(t, msgs, 1)
			assert.Equal(t, []byte("P1"), msgs[0].Key)
			var got domain.Notification
			require.NoError(t, json.Unmarshal(msgs[0].Value, &got))
			assert.Equal(t, received, got)
			return nil
		})
	assert.NoError(t, sender.Send(context.Background(), received))

	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("leader not available"))
	assert.Error(t, sender.Send(context.Background(), received))

	writer.EXPECT().Close().Return(nil)
	assert.NoError(t, sender.Close())
}

func TestHTTPSender_Send(t *testing.T) {
	tests := []struct {
		name        string
		prepareMock func(client *clients.MockHTTPClientI)
		expectErr   bool
	}{
		{
			name: "accepted",
			prepareMock: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Post("http://notifier:8083/api/notifications", gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ string, headers http.Header, body []byte) (int, []byte, error) {
						assert.Equal(t, "application/json", headers.Get("Content-Type"))
						assert.Contains(t, string(body), `"type":"PAYMENT_RECEIVED"`)
						return http.StatusAccepted, nil, nil
					})
			},
		},
		{
			name: "rejected",
			prepareMock: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(http.StatusBadGateway, nil, nil)
			},
			expectErr: true,
		},
		{
			name: "unreachable",
			prepareMock: func(client *clients.MockHTTPClientI) {
				client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil, errors.New("connection refused"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := clients.NewMockHTTPClientI(ctrl)
			tt.prepareMock(client)

			err := NewHTTPSender("http://notifier:8083/", client).Send(context.Background(), received)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogSender_Send(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), received))
}
