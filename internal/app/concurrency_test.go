package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/resonance-bot/internal/domain"
)

func TestParallel_KeepsOrder(t *testing.T) {
	results, err := Parallel(context.Background(),
		func(context.Context) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "shm", nil
		},
		func(context.Context) (string, error) { return "srf", nil },
		func(context.Context) (string, error) { return "sra", nil },
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"shm", "srf", "sra"}, results)
}

func TestParallel_FirstErrorCancelsOthers(t *testing.T) {
	fetchErr := domain.NewFetchError("srf.jpg", "image not found", nil)
	cancelled := make(chan struct{})

	results, err := Parallel(context.Background(),
		func(ctx context.Context) (int, error) {
			select {
			case <-ctx.Done():
				close(cancelled)
				return 0, ctx.Err()
			case <-time.After(time.Second):
				return 1, nil
			}
		},
		func(context.Context) (int, error) { return 0, fetchErr },
	)

	require.ErrorIs(t, err, fetchErr)
	assert.Nil(t, results)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)

	select {
	case <-cancelled:
	default:
		t.Fatal("sibling was not cancelled")
	}
}

func TestParallel_Empty(t *testing.T) {
	results, err := Parallel[int](context.Background())

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestParallelPartial(t *testing.T) {
	boom := errors.New("boom")

	results := ParallelPartial(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context) (int, error) { return 3, nil },
	)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Value)
	require.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, 3, results[2].Value)
	assert.NoError(t, results[2].Err)
}
