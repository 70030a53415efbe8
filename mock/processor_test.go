package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/mdextract"
	"github.com/fwojciec/mdextract/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_Process(t *testing.T) {
	t.Parallel()

	t.Run("delegates to ProcessFn", func(t *testing.T) {
		t.Parallel()

		var gotReq *mdextract.Request
		var gotBucket string
		p := &mock.Processor{
			ProcessFn: func(_ context.Context, req *mdextract.Request, bucket string) (*mdextract.Delivery, error) {
				gotReq = req
				gotBucket = bucket
				return &mdextract.Delivery{Key: "k"}, nil
			},
		}

		req := mdextract.NewWebRequest("https://example.com", mdextract.BackendOpenSource)
		d, err := p.Process(context.Background(), req, "bucket")

		require.NoError(t, err)
		assert.Equal(t, "k", d.Key)
		assert.Same(t, req, gotReq)
		assert.Equal(t, "bucket", gotBucket)
	})
}
