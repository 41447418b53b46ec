// SPDX-License-Identifier: GPL-3.0-only

package reconcile

import (
	"context"
	"craftcv-server/commons"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const queueName = "identity.reconcile"

// PartialSyncEvent is the reconciliation work item drained by the operator
// tooling. It carries both identifiers of the divergent identity.
type PartialSyncEvent struct {
	EID          string `json:"eid"`
	GlobalUserID string `json:"global_user_id"`
	Email        string `json:"email"`
	Reason       string `json:"reason"`
	OccurredAt   string `json:"occurred_at"`
}

type Config struct {
	amqpURL string
}

// Publisher pushes partial-sync events onto a durable broker queue. With no
// AMQP_URL configured it degrades to log-only; the event is still visible in
// the sync audit trail either way.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(c Config) (*Publisher, error) {
	if c.amqpURL == "" {
		c.amqpURL = commons.GetEnv("AMQP_URL")
	}
	if c.amqpURL == "" {
		commons.Logger.Warn("AMQP_URL not set, partial-sync events will only be logged")
		return &Publisher{}, nil
	}

	conn, err := amqp.Dial(c.amqpURL)
	if err != nil {
		commons.Logger.Error("Failed to connect to AMQP broker:", err)
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		commons.Logger.Error("Failed to open AMQP channel:", err)
		return nil, err
	}
	if _, err := channel.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		commons.Logger.Error("Failed to declare reconcile queue:", err)
		return nil, err
	}
	commons.Logger.Debugf("Reconcile publisher initialized, queue: %s", queueName)
	return &Publisher{conn: conn, channel: channel}, nil
}

func (p *Publisher) PublishPartialSync(ctx context.Context, globalUserID, email, reason string) {
	event := PartialSyncEvent{
		EID:          uuid.NewString(),
		GlobalUserID: globalUserID,
		Email:        email,
		Reason:       reason,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}

	if p.channel == nil {
		commons.Logger.Warnf("Partial sync needs reconciliation: global_user_id=%s email=%s reason=%s",
			globalUserID, email, reason)
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		commons.Logger.Error("Failed to encode partial-sync event:", err)
		return
	}
	err = p.channel.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		commons.Logger.Errorf("Failed to publish partial-sync event %s: %v", event.EID, err)
		return
	}
	commons.Logger.Infof("Partial-sync event published for reconciliation: %s", event.EID)
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
