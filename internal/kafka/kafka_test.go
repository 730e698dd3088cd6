package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	producer := NewProducer([]string{"localhost:9092"})
	require.NotNil(t, producer)
	assert.NoError(t, producer.Close())
}

func TestCheckConnection_NoBrokers(t *testing.T) {
	producer := NewProducer(nil)
	defer producer.Close()

	assert.EqualError(t, producer.CheckConnection(context.Background()), "no kafka brokers configured")
}

func TestConsumer_CloseNil(t *testing.T) {
	var consumer *Consumer
	assert.NoError(t, consumer.Close())
}
