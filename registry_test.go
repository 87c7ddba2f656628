package influx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientSingleton(t *testing.T) {
	registry := NewRegistry()

	const n = 100
	clients := make([]*Client, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			c, err := registry.GetClient("http://localhost:8086")
			assert.Nil(t, err)
			clients[i] = c
		}(i)
	}
	wg.Wait()

	require.NotNil(t, clients[0])
	for i := 1; i < n; i++ {
		assert.True(t, clients[0] == clients[i], "call %d returned a different client", i)
	}
}

func TestGetClientDistinctURLs(t *testing.T) {
	registry := NewRegistry()

	a, err := registry.GetClient("http://localhost:8086")
	require.Nil(t, err)
	b, err := registry.GetClient("http://localhost:8087")
	require.Nil(t, err)
	assert.False(t, a == b)

	again, err := registry.GetClient("http://localhost:8086")
	require.Nil(t, err)
	assert.True(t, a == again)
}

func TestGetClientInvalidURLNotRegistered(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.GetClient("ftp://localhost:8086")
	require.NotNil(t, err)
	assert.Len(t, registry.clients, 0)

	// the same registry still works for valid URLs
	c, err := registry.GetClient("http://localhost:8086")
	require.Nil(t, err)
	assert.NotNil(t, c)
}

func TestGetClientRegistryOptions(t *testing.T) {
	options := DefaultOptions()
	options.UseGZip = true
	registry := NewRegistryWithOptions(*options)

	c, err := registry.GetClient("http://localhost:8086")
	require.Nil(t, err)
	assert.True(t, c.Options().UseGZip)
}

func TestDefaultRegistry(t *testing.T) {
	a, err := GetClient("http://localhost:18086")
	require.Nil(t, err)
	b, err := GetClient("http://localhost:18086")
	require.Nil(t, err)
	assert.True(t, a == b)
}
