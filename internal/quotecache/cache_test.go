package quotecache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestCache() (*Cache, *time.Time) {
	now := time.Unix(1_700_000_000, 0)
	c := New()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestPutThenGet(t *testing.T) {
	c, _ := newTestCache()

	c.Put("sol:a:b:100:addr", "payload", 2*time.Second)

	got, ok := c.Get("sol:a:b:100:addr")
	require.True(t, ok)
	require.Equal(t, "payload", got)
}

func TestGet_MissOnUnknownKey(t *testing.T) {
	c, _ := newTestCache()

	_, ok := c.Get("never-stored")
	require.False(t, ok)
}

func TestGet_ExpiredEntryMissesAndEvicts(t *testing.T) {
	c, now := newTestCache()

	c.Put("key", "payload", 2*time.Second)
	*now = now.Add(3 * time.Second)

	_, ok := c.Get("key")
	require.False(t, ok)
	require.Equal(t, 0, c.Len(), "expired entry must be evicted on the failed lookup")
}

func TestGet_EntryLivesUntilExpiry(t *testing.T) {
	c, now := newTestCache()

	c.Put("key", "payload", 2*time.Second)
	*now = now.Add(2 * time.Second) // exactly at expiry, still valid

	got, ok := c.Get("key")
	require.True(t, ok)
	require.Equal(t, "payload", got)
}

func TestPut_OverwritesAndRefreshesTTL(t *testing.T) {
	c, now := newTestCache()

	c.Put("key", "old", 2*time.Second)
	*now = now.Add(1 * time.Second)
	c.Put("key", "new", 2*time.Second)
	*now = now.Add(2 * time.Second)

	got, ok := c.Get("key")
	require.True(t, ok)
	require.Equal(t, "new", got)
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("evm", "0xabc", "0xdef", 100_000, "0xcaller")
	b := Fingerprint("evm", "0xabc", "0xdef", 100_000, "0xcaller")
	require.Equal(t, a, b)

	// Any differing parameter produces a different key.
	require.NotEqual(t, a, Fingerprint("sol", "0xabc", "0xdef", 100_000, "0xcaller"))
	require.NotEqual(t, a, Fingerprint("evm", "0xabc", "0xdef", 100_001, "0xcaller"))
	require.NotEqual(t, a, Fingerprint("evm", "0xabc", "0xdef", 100_000, "0xother"))
}
