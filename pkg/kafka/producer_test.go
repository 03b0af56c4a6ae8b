package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	require.Error(t, err)
}

func TestNewProducerAppliesOptions(t *testing.T) {
	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("zstd"), WithAsync(true))
	require.NoError(t, err)
	defer p.Close()

	assert.True(t, p.writer.Async)
	assert.Equal(t, kafka.Zstd, p.writer.Compression)
	assert.Equal(t, "zstd", p.comp)
}

func TestEncode(t *testing.T) {
	b, err := encode(map[string]int{"generation": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"generation":3}`, string(b))

	b, err = encode("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))
}
