package telemetry

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Provider owns the SDK meter provider. Metrics are pulled on demand through a
// manual reader and rendered as JSON by the API; no collector is required.
type Provider struct {
	MeterProvider *sdkmetric.MeterProvider
	Metrics       *Metrics
	reader        *sdkmetric.ManualReader
	logger        zerolog.Logger
}

func NewProvider(logger zerolog.Logger) (*Provider, error) {
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(meterProvider)

	metrics, err := NewMetrics(meterProvider.Meter(meterName))
	if err != nil {
		_ = meterProvider.Shutdown(context.Background())
		return nil, err
	}

	logger.Debug().Msg("metrics initialized")
	return &Provider{
		MeterProvider: meterProvider,
		Metrics:       metrics,
		reader:        reader,
		logger:        logger,
	}, nil
}

// Point is one exported data point. Histograms report their count and sum.
type Point struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Value      float64           `json:"value"`
	Count      uint64            `json:"count,omitempty"`
}

func (p *Provider) Snapshot(ctx context.Context) ([]Point, error) {
	return collectPoints(ctx, p.reader)
}

func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.MeterProvider.Shutdown(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("shutdown meter provider")
		return err
	}
	return nil
}

func collectPoints(ctx context.Context, reader sdkmetric.Reader) ([]Point, error) {
	var data metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &data); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	points := make([]Point, 0)
	for _, scope := range data.ScopeMetrics {
		for _, instrument := range scope.Metrics {
			switch series := instrument.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range series.DataPoints {
					points = append(points, Point{Name: instrument.Name, Attributes: attributeMap(dp.Attributes), Value: float64(dp.Value)})
				}
			case metricdata.Sum[float64]:
				for _, dp := range series.DataPoints {
					points = append(points, Point{Name: instrument.Name, Attributes: attributeMap(dp.Attributes), Value: dp.Value})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range series.DataPoints {
					points = append(points, Point{Name: instrument.Name, Attributes: attributeMap(dp.Attributes), Value: dp.Sum, Count: dp.Count})
				}
			}
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Name < points[j].Name
	})
	return points, nil
}

func attributeMap(set attribute.Set) map[string]string {
	if set.Len() == 0 {
		return nil
	}
	out := make(map[string]string, set.Len())
	iter := set.Iter()
	for iter.Next() {
		kv := iter.Attribute()
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}
