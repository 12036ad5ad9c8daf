//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"reddit_archiver/internal/domain"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) config(name string) Config {
	return Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-" + name,
		RoutingKey: "test-routing-key-" + name,
		QueueName:  "test-queue-" + name,
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	pub, err := NewRabbitMQ(s.config("conn"), s.logger)
	s.NoError(err)
	s.NotNil(pub)
	s.NoError(pub.Close())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_ReportPublishesMessage() {
	cfg := s.config("report")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	syncErr := domain.SyncError{
		ID:         "e-1",
		RunID:      "r-1",
		Group:      domain.GroupSaved,
		ExternalID: "t1_abc",
		Stage:      domain.StageResolve,
		Err:        &domain.StructuralError{ExternalID: "t1_abc", Reason: "parent link t3_x not found upstream"},
		RawPayload: []byte(`{"kind":"t1","data":{"id":"abc"}}`),
		OccurredAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	pub.Report(s.ctx, syncErr)

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)
	s.Equal("application/json", msg.ContentType)
	s.Equal("e-1", msg.MessageId)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)

	var received SyncErrorMessage
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal("t1_abc", received.ExternalID)
	s.Equal("structural", received.ErrorType)
	s.Equal(domain.StageResolve, received.Stage)
	s.Equal("saved", received.Group)
	s.JSONEq(string(syncErr.RawPayload), string(received.RawPayload))
	s.False(received.Timestamp.IsZero())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_ReportAfterCloseDoesNotPanic() {
	pub, err := NewRabbitMQ(s.config("closed"), s.logger)
	s.Require().NoError(err)
	s.Require().NoError(pub.Close())

	s.NotPanics(func() {
		pub.Report(s.ctx, domain.SyncError{ID: "e-2", Err: errors.New("x")})
	})
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}
