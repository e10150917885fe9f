package subscriber

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/productstore/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingApplier struct {
	applied []events.ProductChangedEvent
}

func (r *recordingApplier) Apply(e events.ProductChangedEvent) {
	r.applied = append(r.applied, e)
}

func Test_Handler(t *testing.T) {
	valid := events.ProductChangedEvent{
		Type:       events.ProductUpdated,
		ProductID:  uuid.New(),
		Name:       "Pen",
		Price:      12,
		Image:      "http://x/pen.png",
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	validPayload, err := valid.Payload()
	require.NoError(t, err)

	testCases := []struct {
		name            string
		payload         []byte
		expectedApplied int
	}{
		{name: "Valid event is applied", payload: validPayload, expectedApplied: 1},
		{name: "Invalid JSON is dropped", payload: []byte("invalid payload"), expectedApplied: 0},
		{name: "Unknown type is dropped", payload: []byte(`{"type":"renamed","product_id":"` + uuid.NewString() + `"}`), expectedApplied: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			applier := &recordingApplier{}
			handle := NewHandler(applier, slog.New(slog.NewTextHandler(io.Discard, nil)))
			// when
			err := handle(context.Background(), tc.payload)
			// then
			require.NoError(t, err, "handler never asks for redelivery")
			require.Len(t, applier.applied, tc.expectedApplied)
			if tc.expectedApplied > 0 {
				assert.Equal(t, valid, applier.applied[0])
			}
		})
	}
}
