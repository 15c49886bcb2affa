// Package events relays outbox rows to an external publisher.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Message is one outbox event on its way out.
type Message struct {
	ID      string
	Topic   string
	Key     string
	Payload json.RawMessage
}

type Publisher interface {
	Publish(ctx context.Context, m Message) error
}

// SQSAPI is the part of *sqs.Client the publisher uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends each event as one SQS message with the topic and key as
// message attributes.
type SQSPublisher struct {
	Client   SQSAPI
	QueueURL string
}

var _ Publisher = (*SQSPublisher)(nil)

func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{Client: client, QueueURL: queueURL}
}

func (p *SQSPublisher) Publish(ctx context.Context, m Message) error {
	_, err := p.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.QueueURL),
		MessageBody: aws.String(string(m.Payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"topic":   {DataType: aws.String("String"), StringValue: aws.String(m.Topic)},
			"key":     {DataType: aws.String("String"), StringValue: aws.String(m.Key)},
			"eventId": {DataType: aws.String("String"), StringValue: aws.String(m.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("send %s to sqs: %w", m.Topic, err)
	}

	return nil
}

// LogPublisher writes events to the log. Used when no queue is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

var _ Publisher = (*LogPublisher)(nil)

func (p *LogPublisher) Publish(ctx context.Context, m Message) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, "event published",
		"event_id", m.ID, "topic", m.Topic, "key", m.Key, "payload", string(m.Payload))

	return nil
}
