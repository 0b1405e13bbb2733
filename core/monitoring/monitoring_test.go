package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	errs    []error
	tags    []map[string]string
	flushed bool
}

func (r *recorder) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}

func (r *recorder) Flush(time.Duration) { r.flushed = true }

func TestCapturePanic(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	t.Cleanup(Reset)

	base := errors.New("boom")
	err := CapturePanic(base, map[string]string{"asset_id": "V1"})
	assert.ErrorIs(t, err, base)
	err = CapturePanic("index out of range", nil)
	assert.EqualError(t, err, "panic: index out of range")

	require.Len(t, rec.errs, 2)
	assert.Equal(t, "V1", rec.tags[0]["asset_id"])

	CaptureException(nil, nil)
	assert.Len(t, rec.errs, 2)

	Flush(time.Second)
	assert.True(t, rec.flushed)
}

func TestInitIgnoresNil(t *testing.T) {
	Init(nil)
	CaptureException(errors.New("x"), nil)
}
