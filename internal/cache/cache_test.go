package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_NilIsMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.Nil(t, New("", "", 0))
	assert.Nil(t, c.Get(ctx, "k"))
	c.Set(ctx, "k", []byte("v"), time.Minute)
	c.Delete(ctx, "k")
	c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute)

	var dest map[string]int
	assert.False(t, c.GetJSON(ctx, "k", &dest))
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestClient_UnreachableServerFailsSafe(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c.SetJSON(ctx, "categories", []string{"tops"}, time.Minute)

	var dest []string
	assert.False(t, c.GetJSON(ctx, "categories", &dest))
	assert.Error(t, c.Ping(ctx))
}
