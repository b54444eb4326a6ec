package consumers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openregulations/docketflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinishRunPublishFailureBlocksMark(t *testing.T) {
	resultRetryDelay = 0
	defer func() { resultRetryDelay = 2 * time.Second }()

	publishCalls := 0
	markCalls := 0

	err := finishRun(context.Background(),
		models.AnalysisResult{DocketID: "EPA-2025-0007"},
		func(models.AnalysisResult) error {
			publishCalls++
			return errors.New("broker unreachable")
		},
		func(context.Context, string) error {
			markCalls++
			return nil
		})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "EPA-2025-0007")
	assert.Equal(t, 3, publishCalls)
	// A lost result must not enter the analyzed TTL window; the request
	// has to replay instead.
	assert.Zero(t, markCalls)
}

func TestFinishRunRetriesThenSucceeds(t *testing.T) {
	resultRetryDelay = 0
	defer func() { resultRetryDelay = 2 * time.Second }()

	publishCalls := 0
	markCalls := 0

	err := finishRun(context.Background(),
		models.AnalysisResult{DocketID: "EPA-2025-0008"},
		func(models.AnalysisResult) error {
			publishCalls++
			if publishCalls < 3 {
				return errors.New("transient")
			}
			return nil
		},
		func(_ context.Context, docketID string) error {
			markCalls++
			assert.Equal(t, "EPA-2025-0008", docketID)
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, publishCalls)
	assert.Equal(t, 1, markCalls)
}

func TestFinishRunMarkFailureIsNotFatal(t *testing.T) {
	err := finishRun(context.Background(),
		models.AnalysisResult{DocketID: "EPA-2025-0009"},
		func(models.AnalysisResult) error { return nil },
		func(context.Context, string) error { return errors.New("valkey down") })

	// Worst case is a duplicate run; the result made it out.
	require.NoError(t, err)
}
