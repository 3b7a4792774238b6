package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
)

type EventPublisher interface {
	PublishAnswersSubmitted(ctx context.Context, event *models.AnswersSubmittedEvent) error
	PublishScoreRecorded(ctx context.Context, event *models.ScoreRecordedEvent) error
	Close() error
}

type eventPublisher struct {
	conn             *amqp091.Connection
	channel          *amqp091.Channel
	exchange         string
	submittedKey     string
	scoreRecordedKey string
	logger           zerolog.Logger
}

func NewEventPublisher(url, exchange, submittedKey, scoreRecordedKey, queueName string, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range []string{submittedKey, scoreRecordedKey} {
		err = channel.QueueBind(
			queue.Name, // queue name
			key,        // routing key
			exchange,   // exchange
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	logger.Info().
		Str("exchange", exchange).
		Str("queue", queue.Name).
		Msg("Connected to RabbitMQ")

	return &eventPublisher{
		conn:             conn,
		channel:          channel,
		exchange:         exchange,
		submittedKey:     submittedKey,
		scoreRecordedKey: scoreRecordedKey,
		logger:           logger,
	}, nil
}

func (p *eventPublisher) PublishAnswersSubmitted(ctx context.Context, event *models.AnswersSubmittedEvent) error {
	if err := p.publish(ctx, p.submittedKey, event); err != nil {
		return err
	}

	p.logger.Info().
		Str("exam_id", event.ExamID).
		Str("student_id", event.StudentID).
		Int("answered", event.Answered).
		Msg("Answers submitted event published")

	return nil
}

func (p *eventPublisher) PublishScoreRecorded(ctx context.Context, event *models.ScoreRecordedEvent) error {
	if err := p.publish(ctx, p.scoreRecordedKey, event); err != nil {
		return err
	}

	p.logger.Info().
		Str("answer_id", event.AnswerID).
		Int("score", event.Score).
		Msg("Score recorded event published")

	return nil
}

func (p *eventPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		publishCtx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (p *eventPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}
