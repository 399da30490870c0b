package mqtt

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"weathercard/internal/widget"
)

type published struct {
	topic    string
	retained bool
	payload  interface{}
}

type fakeClient struct {
	mqtt.Client
	messages []published
	err      error
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.messages = append(f.messages, published{topic: topic, retained: retained, payload: payload})
	return &doneToken{err: f.err}
}

func (f *fakeClient) IsConnected() bool { return true }

type doneToken struct{ err error }

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }

func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherMirrorsFields(t *testing.T) {
	client := &fakeClient{}
	pub := newPublisher(client, "home/weather", discardLogger())

	widget.Fields{
		City:        "London, GB",
		Date:        "Thursday, 9 Jan",
		Temperature: "16°C",
		Condition:   "clear sky",
		Wind:        "💨 3.2 km/h",
		Humidity:    "💧 70%",
		Today:       "Clear 16°",
		Theme:       widget.ThemeResult{Theme: widget.ThemeSummer, Image: widget.ImageSummer},
	}.Apply(pub)

	require.Len(t, client.messages, 8)
	require.Equal(t, published{"home/weather/city", true, "London, GB"}, client.messages[0])
	require.Equal(t, published{"home/weather/wind", true, "💨 3.2 km/h"}, client.messages[4])

	theme := client.messages[7]
	require.Equal(t, "home/weather/theme", theme.topic)
	require.JSONEq(t, `{"theme":"summer","image":"assets/summer.png"}`, string(theme.payload.([]byte)))
}

func TestPublisherAlertNotRetained(t *testing.T) {
	client := &fakeClient{err: errors.New("broker gone")}
	pub := newPublisher(client, "", discardLogger())

	pub.Alert("City not found")

	require.Equal(t, []published{{"weathercard/alert", false, "City not found"}}, client.messages)
	require.True(t, pub.IsConnected())
}

func TestDisabledPublisherIsNoop(t *testing.T) {
	pub, err := NewPublisher(PublisherConfig{Enabled: false, Logger: discardLogger()})
	require.NoError(t, err)

	pub.SetCity("London, GB")
	pub.Alert("City not found")
	require.False(t, pub.IsConnected())
	pub.Close()
}
