package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/way-19/consulting19/internal/config"
	"github.com/way-19/consulting19/internal/content"
)

func attrMap(attrs []any) map[string]slog.Value {
	out := make(map[string]slog.Value, len(attrs))
	for _, a := range attrs {
		attr := a.(slog.Attr)
		out[attr.Key] = attr.Value
	}
	return out
}

func TestStartupAttrs_StoreMode(t *testing.T) {
	bundle, err := content.Load()
	require.NoError(t, err)

	cfg := &config.Config{Environment: "development", HTTPPort: 8080, SubmitMode: config.SubmitModeStore}
	got := attrMap(startupAttrs(cfg, bundle))

	assert.Equal(t, int64(bundle.Catalog.Len()), got["services"].Int64())
	assert.Equal(t, int64(len(bundle.Countries)), got["countries"].Int64())
	assert.Equal(t, []string{"standard", "banking", "express"}, got["wizard_variants"].Any())
	assert.Equal(t, []string{"en", "es", "pt", "tr"}, got["languages"].Any())
	assert.Equal(t, "store", got["submit_mode"].String())
	assert.NotContains(t, got, "order_api_url")
}

func TestStartupAttrs_APIMode(t *testing.T) {
	bundle, err := content.Load()
	require.NoError(t, err)

	cfg := &config.Config{
		Environment: "production",
		HTTPPort:    9000,
		SubmitMode:  config.SubmitModeAPI,
		OrderAPIURL: "https://orders.internal/api/orders",
	}
	got := attrMap(startupAttrs(cfg, bundle))

	assert.Equal(t, int64(9000), got["http_port"].Int64())
	assert.Equal(t, "https://orders.internal/api/orders", got["order_api_url"].String())
}
