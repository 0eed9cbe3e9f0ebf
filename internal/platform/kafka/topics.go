// Package kafka holds broker-level helpers shared by producers.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// EnsureTopic creates topic if it does not exist. An existing topic is left untouched.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// BrokerCount returns how many brokers the cluster reports.
func BrokerCount(ctx context.Context, client *kgo.Client) (int, error) {
	meta, err := kadm.NewClient(client).BrokerMetadata(ctx)
	if err != nil {
		return 0, fmt.Errorf("broker metadata: %w", err)
	}
	return len(meta.Brokers), nil
}

// BrokersReady builds a readiness check that fails until the cluster reports at least one broker.
func BrokersReady(client *kgo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		n, err := BrokerCount(ctx, client)
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("no kafka brokers available")
		}
		return nil
	}
}
