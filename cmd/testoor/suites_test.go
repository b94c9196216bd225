package main

import (
	"context"
	"io"
	"testing"

	"github.com/ethpandaops/testoor/pkg/report"
	"github.com/ethpandaops/testoor/pkg/runner"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuites(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	rep, err := runner.NewRunner(log, nil).Run(context.Background(), Suites())
	require.NoError(t, err)

	stats := rep.Stats()
	assert.Equal(t, report.ResultSuccess, rep.Result())
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 9, stats.Passed)
	assert.Equal(t, 1, stats.Skipped)

	_, ok := rep.Find("Arithmetic", "add", "negative")
	assert.True(t, ok)

	_, ok = rep.Find("Arithmetic", "store and recall")
	assert.True(t, ok)
}
