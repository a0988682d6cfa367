package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	twitterauth "github.com/golden-vcr/twitter-auth"
)

type mockProducer struct {
	err      error
	messages []string
}

func (m *mockProducer) Send(ctx context.Context, jsonData []byte) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, string(jsonData))
	return nil
}

func Test_NewEvent(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	ev := NewEvent(&twitterauth.Session{Username: "twitter/alice", DisplayName: "alice", IssuedAt: issuedAt})
	assert.Equal(t, Event{Type: TypeLogin, Username: "twitter/alice", DisplayName: "alice", Timestamp: issuedAt}, ev)

	ev = NewEvent(&twitterauth.Session{Username: "twitter/bob", DisplayName: "bob", Registered: true, IssuedAt: issuedAt})
	assert.Equal(t, TypeRegister, ev.Type)
}

func Test_AMQPPublisher_Publish(t *testing.T) {
	producer := &mockProducer{}
	p := &AMQPPublisher{producer: producer}

	err := p.Publish(context.Background(), Event{
		Type:        TypeRegister,
		Username:    "twitter/alice",
		DisplayName: "alice",
		Timestamp:   time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
	assert.Len(t, producer.messages, 1)
	assert.JSONEq(t, `{"type":"register","username":"twitter/alice","displayName":"alice","timestamp":"2024-03-01T09:30:00Z"}`, producer.messages[0])
}

func Test_AMQPPublisher_Publish_send_failure(t *testing.T) {
	p := &AMQPPublisher{producer: &mockProducer{err: errors.New("channel closed")}}
	err := p.Publish(context.Background(), Event{Type: TypeLogin, Username: "twitter/alice"})
	assert.EqualError(t, err, "channel closed")
}
