package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type probe struct {
	ID   uint
	Name string
}

func TestInstrumentDB_RecordsQueryDurations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&probe{}))

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	core, logs := observer.New(zap.WarnLevel)

	// 1ns makes every statement slow
	require.NoError(t, InstrumentDB(db, DBConfig{SlowQueryThresh: 1}, provider.Meter("test"), zap.New(core)))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&probe{Name: "cement"}).Error)
	var got []probe
	require.NoError(t, db.WithContext(ctx).Find(&got).Error)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var points int
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "db.client.query.duration" {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			for _, dp := range hist.DataPoints {
				points += int(dp.Count)
			}
		}
	}
	assert.GreaterOrEqual(t, points, 2)
	assert.GreaterOrEqual(t, logs.FilterMessage("Slow query").Len(), 2)
}
