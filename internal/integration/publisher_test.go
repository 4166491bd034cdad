//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-vulnerability-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-vulnerability-service/internal/config"
	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
	"github.com/couchcryptid/flood-vulnerability-service/internal/observability"
	"github.com/couchcryptid/flood-vulnerability-service/internal/pipeline"
	"github.com/couchcryptid/flood-vulnerability-service/internal/vulnerability"
)

const testTopic = "fvi-assessments-test"

type fixedGatherer struct{ signals domain.Signals }

func (g fixedGatherer) Gather(context.Context, float64, float64, *domain.DistrictProfile) domain.Signals {
	return g.signals
}

// TestCalculatorPublishesToKafka runs a calculation with a real publisher and
// reads the assessment back from the topic.
func TestCalculatorPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	metrics := observability.NewMetricsForTesting()
	pub := kafka.NewPublisher(cfg, metrics, discardLogger())
	t.Cleanup(func() { _ = pub.Close() })

	engine, err := vulnerability.NewEngine(discardLogger())
	require.NoError(t, err)

	signals := domain.Signals{
		Weather:       domain.DefaultWeather(),
		Terrain:       domain.TerrainSignals{Elevation: 250, Slope: 2},
		Hydrology:     domain.HydrologySignals{DistanceToWater: 80, DrainageDensity: 6},
		Socioeconomic: domain.Socioeconomic(&domain.DistrictProfile{PopulationDensity: 612, Urbanization: 80, DevPressure: 85}),
	}
	calc := pipeline.NewCalculator(fixedGatherer{signals}, engine, pub, metrics, discardLogger())

	d, ok := domain.BuiltinDistricts().Lookup("Haridwar")
	require.True(t, ok)
	result := calc.CalculateDistrict(ctx, d)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("fvi-test-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read assessment")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, result.ID, string(msg.Key))
	assert.Equal(t, result.RiskLevel, headers["risk_level"])
	assert.Equal(t, result.Inference, headers["inference"])
	_, err = time.Parse(time.RFC3339, headers["computed_at"])
	assert.NoError(t, err, "computed_at should be RFC3339")

	var got domain.Result
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, result.ID, got.ID)
	assert.Equal(t, "Haridwar", got.District)
	assert.Equal(t, result.FVIScore, got.FVIScore)
	assert.Equal(t, result.KeyFactors, got.KeyFactors)
}
