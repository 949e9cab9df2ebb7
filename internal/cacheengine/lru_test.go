package cacheengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxBytes int64, maxEntries int) *Cache {
	t.Helper()
	c, err := New(maxBytes, maxEntries)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// TestSizeEvictionScenario verifies that exceeding the byte budget evicts
// the least-recently-used entry first, leaving the most recent entries
// within budget.
func TestSizeEvictionScenario(t *testing.T) {
	c := newTestCache(t, 3, 0)

	c.Put("a", []byte("1"), TypePageText, QualityLow, false)
	c.Put("b", []byte("1"), TypePageText, QualityLow, false)
	c.Put("c", []byte("1"), TypePageText, QualityLow, false)
	c.Put("d", []byte("1"), TypePageText, QualityLow, false)

	require.Equal(t, []string{"b", "c", "d"}, c.Keys())
	stats := c.Stats()
	require.Equal(t, uint64(1), stats.SizeEvictions)
	require.Equal(t, uint64(0), stats.CountEvictions)
	require.Equal(t, int64(3), stats.CurrentSize)
}

// TestCountEviction verifies that the entry-count bound evicts as soon as
// the count would reach the limit, so a cache bounded at N entries holds
// N-1 once it has filled up at least once.
func TestCountEviction(t *testing.T) {
	c := newTestCache(t, 0, 2)

	c.Put("a", []byte("x"), TypePageText, QualityLow, false)
	c.Put("b", []byte("x"), TypePageText, QualityLow, false)
	c.Put("c", []byte("x"), TypePageText, QualityLow, false)

	require.Equal(t, []string{"c"}, c.Keys())
	require.Equal(t, uint64(2), c.Stats().CountEvictions)
}

func TestLRUPromotionOnGet(t *testing.T) {
	c := newTestCache(t, 0, 4)
	c.Put("a", []byte("x"), TypePageText, QualityLow, false)
	c.Put("b", []byte("x"), TypePageText, QualityLow, false)
	c.Put("c", []byte("x"), TypePageText, QualityLow, false)

	_, ok := c.Get("a")
	require.True(t, ok)

	require.Equal(t, []string{"b", "c", "a"}, c.Keys(), "a get must promote past every other present key")
}

// TestReplaceNotCountedAsEviction checks that re-inserting an existing key
// does not count as an eviction, even though it removes and re-adds the
// entry under the hood.
func TestReplaceNotCountedAsEviction(t *testing.T) {
	c := newTestCache(t, 100, 10)
	c.Put("a", []byte("hello"), TypePageText, QualityLow, false)
	before := c.Stats()

	c.Put("a", []byte("hello"), TypePageText, QualityLow, false)
	after := c.Stats()

	require.Equal(t, before.SizeEvictions, after.SizeEvictions)
	require.Equal(t, before.CountEvictions, after.CountEvictions)
	require.Equal(t, 1, c.Len())
	require.Equal(t, int64(len("hello")), after.CurrentSize)
}

func TestCompressionAboveThresholdAndShrinkage(t *testing.T) {
	c := newTestCache(t, 0, 10)

	// Highly compressible, large payload: should compress.
	payload := []byte(strings.Repeat("a", 4096))
	entry := c.Put("big", payload, TypePageRender, QualityHigh, true)
	require.Less(t, entry.CompressionRatio, 1.0)
	require.Less(t, len(entry.Payload), len(payload))

	decoded, err := c.Decompress(entry.Payload)
	require.NoError(t, err)
	require.Equal(t, payload, decoded)
}

func TestCompressionSkippedWhenSmall(t *testing.T) {
	c := newTestCache(t, 0, 10)
	payload := []byte("short")
	entry := c.Put("small", payload, TypePageRender, QualityHigh, true)
	require.Equal(t, 1.0, entry.CompressionRatio)
	require.Equal(t, payload, entry.Payload)
}

func TestPurgeByTypeAndQuality(t *testing.T) {
	c := newTestCache(t, 0, 10)
	c.Put("r1", []byte("x"), TypePageRender, QualityHigh, false)
	c.Put("r2", []byte("x"), TypePageRender, QualityLow, false)
	c.Put("t1", []byte("x"), TypePageText, QualityLossless, false)

	n := c.PurgeByType(TypePageRender)
	require.Equal(t, 2, n)
	require.Equal(t, []string{"t1"}, c.Keys())

	c.Put("r3", []byte("x"), TypePageRender, QualityLossless, false)
	n = c.PurgeByQuality(QualityLossless)
	require.Equal(t, 2, n)
	require.Equal(t, 0, c.Len())
}

func TestClearRatio(t *testing.T) {
	c := newTestCache(t, 0, 10)
	for _, k := range []string{"a", "b", "c", "d"} {
		c.Put(k, []byte("x"), TypePageText, QualityLow, false)
	}
	removed := c.ClearRatio(0.5)
	require.Equal(t, 2, removed)
	require.Equal(t, []string{"c", "d"}, c.Keys())
}

func TestInvariantSizeEqualsSum(t *testing.T) {
	c := newTestCache(t, 1000, 100)
	for _, k := range []string{"a", "bb", "ccc"} {
		c.Put(k, []byte(strings.Repeat("x", len(k))), TypePageText, QualityLow, false)
	}
	var sum int64
	for _, k := range c.Keys() {
		e, _ := c.Peek(k)
		sum += e.Size
	}
	require.Equal(t, sum, c.Stats().CurrentSize)
}
