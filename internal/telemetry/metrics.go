package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/campus-eats/preorder/internal/domain"
)

// InitMeterProvider initializes the Prometheus exporter and MeterProvider.
// It returns an http.Handler for the /metrics endpoint and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(serviceName, serviceVersion)),
	)
	otel.SetMeterProvider(mp)

	return promhttp.Handler(), mp.Shutdown, nil
}

func newResource(serviceName, serviceVersion string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)
}

// EngineMetrics records ordering outcomes. It satisfies session.Observer.
type EngineMetrics struct {
	ordersPlaced   metric.Int64Counter
	orderItems     metric.Int64Histogram
	slotRejections metric.Int64Counter
}

func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	ordersPlaced, err := meter.Int64Counter("preorder.orders.placed",
		metric.WithDescription("Orders placed by the client"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	orderItems, err := meter.Int64Histogram("preorder.order.items",
		metric.WithDescription("Item count per placed order"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	slotRejections, err := meter.Int64Counter("preorder.slot.rejections",
		metric.WithDescription("Pickup slots rejected at submission"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		ordersPlaced:   ordersPlaced,
		orderItems:     orderItems,
		slotRejections: slotRejections,
	}, nil
}

func (m *EngineMetrics) OrderPlaced(order domain.Order) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("vendor.id", order.Vendor.ID),
		attribute.Bool("order.take_out", order.TakeOut),
	)

	items := 0
	for _, line := range order.Items {
		items += line.Quantity
	}

	m.ordersPlaced.Add(ctx, 1, attrs)
	m.orderItems.Record(ctx, int64(items), attrs)
}

func (m *EngineMetrics) SlotRejected(label string) {
	m.slotRejections.Add(context.Background(), 1, metric.WithAttributes(attribute.String("pickup.slot", label)))
}
