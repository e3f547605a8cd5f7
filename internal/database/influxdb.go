package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ipc-charts/internal/config"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

// InfluxDBStore keeps samples as points of one measurement, tagged with
// metric, strategy, held and varying value, with the sample in field
// "value".
type InfluxDBStore struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	queryAPI    api.QueryAPI
	bucket      string
	measurement string
	logger      *logrus.Logger
}

func NewInfluxDBStore(cfg config.InfluxDBConfig, measurement string, logger *logrus.Logger) (*InfluxDBStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if measurement == "" {
		measurement = config.DefaultMeasurement
	}

	client := influxdb2.NewClient(cfg.Host, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		logger.WithField("host", cfg.Host).WithError(err).Error("Failed to connect to InfluxDB")
		return nil, fmt.Errorf("failed to connect to influxdb: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		logger.WithFields(logrus.Fields{
			"host":   cfg.Host,
			"status": health.Status,
		}).Error("InfluxDB health check failed")
		return nil, fmt.Errorf("influxdb health check failed with status %q", health.Status)
	}

	logger.WithFields(logrus.Fields{
		"host":        cfg.Host,
		"bucket":      cfg.Bucket,
		"org":         cfg.Org,
		"measurement": measurement,
	}).Info("Connected to InfluxDB")

	return &InfluxDBStore{
		client:      client,
		writeAPI:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		queryAPI:    client.QueryAPI(cfg.Org),
		bucket:      cfg.Bucket,
		measurement: measurement,
		logger:      logger,
	}, nil
}

func (s *InfluxDBStore) Close() error {
	s.client.Close()
	return nil
}

func (s *InfluxDBStore) QuerySamples(ctx context.Context, metric string) ([]Sample, error) {
	s.logger.WithFields(logrus.Fields{
		"measurement": s.measurement,
		"metric":      metric,
	}).Debug("Querying benchmark samples")

	query := fmt.Sprintf(`
		from(bucket: %q)
		|> range(start: 0)
		|> filter(fn: (r) => r["_measurement"] == %q)
		|> filter(fn: (r) => r["metric"] == %q)
		|> filter(fn: (r) => r["_field"] == "value")
		|> group()
		|> sort(columns: ["_time"])
	`, s.bucket, s.measurement, metric)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer result.Close()

	var samples []Sample
	for result.Next() {
		record := result.Record()

		sample := Sample{Metric: metric}
		if strategy, ok := record.ValueByKey("strategy").(string); ok {
			sample.Strategy = strategy
		}
		held, err := parseTagValue(record.ValueByKey("held"))
		if err != nil {
			return nil, fmt.Errorf("record at %s: held tag: %w", record.Time(), err)
		}
		varying, err := parseTagValue(record.ValueByKey("varying"))
		if err != nil {
			return nil, fmt.Errorf("record at %s: varying tag: %w", record.Time(), err)
		}
		sample.Held = held
		sample.Varying = varying

		switch v := record.Value().(type) {
		case float64:
			sample.Value = v
		case int64:
			sample.Value = float64(v)
		default:
			return nil, fmt.Errorf("record at %s: unexpected value type %T", record.Time(), v)
		}
		samples = append(samples, sample)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("query parsing failed: %w", result.Err())
	}

	s.logger.WithField("samples", len(samples)).Debug("Query completed")
	return samples, nil
}

func (s *InfluxDBStore) WriteSamples(ctx context.Context, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}
	ts := time.Now()
	points := make([]*write.Point, 0, len(samples))
	for _, sample := range samples {
		points = append(points, influxdb2.NewPoint(s.measurement,
			map[string]string{
				"metric":   sample.Metric,
				"strategy": sample.Strategy,
				"held":     strconv.FormatFloat(sample.Held, 'f', -1, 64),
				"varying":  strconv.FormatFloat(sample.Varying, 'f', -1, 64),
			},
			map[string]interface{}{"value": sample.Value},
			ts))
	}
	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return nil
}

func parseTagValue(v interface{}) (float64, error) {
	str, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("missing or non-string tag (%T)", v)
	}
	return strconv.ParseFloat(str, 64)
}
