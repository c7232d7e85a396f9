package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreamManager struct {
	StreamFunc       func(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStreamFunc func(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)

	created []jetstream.StreamConfig
}

func (f *fakeStreamManager) Stream(ctx context.Context, name string) (jetstream.Stream, error) {
	if f.StreamFunc != nil {
		return f.StreamFunc(ctx, name)
	}
	return nil, jetstream.ErrStreamNotFound
}

func (f *fakeStreamManager) CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.created = append(f.created, cfg)
	if f.CreateStreamFunc != nil {
		return f.CreateStreamFunc(ctx, cfg)
	}
	return nil, nil
}

func TestInitializeStreams(t *testing.T) {
	tests := []struct {
		name        string
		js          *fakeStreamManager
		wantErr     bool
		wantCreated int
	}{
		{
			name:        "creates missing stream",
			js:          &fakeStreamManager{},
			wantCreated: 1,
		},
		{
			name: "existing stream left alone",
			js: &fakeStreamManager{StreamFunc: func(context.Context, string) (jetstream.Stream, error) {
				return nil, nil
			}},
		},
		{
			name: "lookup failure",
			js: &fakeStreamManager{StreamFunc: func(context.Context, string) (jetstream.Stream, error) {
				return nil, errors.New("no responders")
			}},
			wantErr: true,
		},
		{
			name: "create failure",
			js: &fakeStreamManager{CreateStreamFunc: func(context.Context, jetstream.StreamConfig) (jetstream.Stream, error) {
				return nil, errors.New("insufficient resources")
			}},
			wantErr:     true,
			wantCreated: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeStreams(context.Background(), tt.js, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, tt.js.created, tt.wantCreated)
			if tt.wantCreated > 0 {
				assert.Equal(t, ResultsStream, tt.js.created[0].Name)
				assert.Equal(t, []string{"game_result.>"}, tt.js.created[0].Subjects)
			}
		})
	}
}
