package bootstrap

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dzorders-backend/pkg/config"
)

func TestManagerRegistersConfiguredCarriers(t *testing.T) {
	cfg := &config.Config{
		Yalidine: config.YalidineConfig{APIKey: "key", BaseURL: "http://localhost"},
	}

	manager, err := Manager(cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	require.Equal(t, []string{"yalidine"}, manager.Registry().Names())
}

func TestManagerWithoutCredentials(t *testing.T) {
	manager, err := Manager(&config.Config{}, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	require.Empty(t, manager.Registry().Names())
}
