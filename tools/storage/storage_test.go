package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileState(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{
			name:     "flights dataset",
			filename: "flights.json",
			data:     []byte(`[{"flight_id": "AI101", "from": "Delhi", "to": "Goa", "price": 4500}]`),
		},
		{
			name:     "empty dataset",
			filename: "empty.json",
			data:     []byte(`[]`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.filename)
			require.NoError(t, os.WriteFile(filePath, tt.data, 0644))

			loaded, err := NewFileState(filePath).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.data, loaded)
		})
	}

	t.Run("load nonexistent file", func(t *testing.T) {
		_, err := NewFileState(filepath.Join(tmpDir, "nonexistent.json")).Load(context.Background())
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestTestState(t *testing.T) {
	st := NewTestState([]byte(`[]`))
	b, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), b)

	st.Set([]byte(`[{}]`))
	b, err = st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{}]`), b)

	_, err = NewTestStateWithError().Load(context.Background())
	assert.Error(t, err)
}

type fakeS3 struct {
	body  []byte
	err   error
	input *s3.GetObjectInput
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestS3State(t *testing.T) {
	t.Run("reads object body", func(t *testing.T) {
		client := &fakeS3{body: []byte(`[{"name": "Taj"}]`)}
		b, err := NewS3State(client, "artifacts", "hotels.json").Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `[{"name": "Taj"}]`, string(b))
		assert.Equal(t, "artifacts", aws.ToString(client.input.Bucket))
		assert.Equal(t, "hotels.json", aws.ToString(client.input.Key))
	})

	t.Run("wraps get object errors", func(t *testing.T) {
		client := &fakeS3{err: errors.New("access denied")}
		_, err := NewS3State(client, "artifacts", "places.json").Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "s3://artifacts/places.json")
		assert.Contains(t, err.Error(), "access denied")
	})
}
