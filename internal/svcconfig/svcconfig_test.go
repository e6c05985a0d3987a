package svcconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRequiresRegion(t *testing.T) {
	c := &Config{MaxBatchSize: 1}
	assert.Error(t, c.Verify())
	c.Region = "us-east-1"
	assert.NoError(t, c.Verify())
}

func TestApplyOverlayFillsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.toml")
	content := "region = \"us-west-2\"\nqueue_url = \"https://example.invalid/q\"\nmax_batch_size = 5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c := &Config{}
	require.NoError(t, c.ApplyOverlay(path))
	assert.Equal(t, "us-west-2", c.Region)
	assert.Equal(t, "https://example.invalid/q", c.QueueURL)
	assert.Equal(t, 5, c.MaxBatchSize)
}
