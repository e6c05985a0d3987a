package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxBatchSize(t *testing.T) {
	assert.Equal(t, 10, MaxBatchSize)
}

func TestEntryCarriesIDAndBody(t *testing.T) {
	e := Entry{ID: "num_1", Body: `{"bucket":"b"}`}
	assert.Equal(t, "num_1", e.ID)
	assert.Equal(t, `{"bucket":"b"}`, e.Body)
}
