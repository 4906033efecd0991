package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrefersRemoteEngines(t *testing.T) {
	dir := t.TempDir()
	r := Build(dir, []string{"recommend", "search"}, map[string]string{"search": "http://engines:9000/search"}, time.Second)

	assert.Equal(t, []string{"recommend", "search"}, r.Names())

	local, ok := r.Lookup("recommend")
	require.True(t, ok)
	proc, ok := local.(*Process)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "recommend"), proc.Path)

	remote, ok := r.Lookup("search")
	require.True(t, ok)
	assert.Equal(t, "http://engines:9000/search", remote.(*Remote).URL)
}
