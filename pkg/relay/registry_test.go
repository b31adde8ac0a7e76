package relay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryLookupReturnsRegisteredHandler(t *testing.T) {
	reg := NewRegistry()
	var clicked bool
	require.NoError(t, reg.Register("hello-btn", "click", SideEffect(func() { clicked = true })))

	h, ok := reg.Lookup("hello-btn", "click")
	require.True(t, ok)
	resp, err := h.Handle(&Event{ElementID: "hello-btn", EventType: "click"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.True(t, clicked)

	_, ok = reg.Lookup("hello-btn", "change")
	require.False(t, ok)
	_, ok = reg.Lookup("other-btn", "click")
	require.False(t, ok)
}

func TestRegistryDistinctKeysKeepDistinctHandlers(t *testing.T) {
	reg := NewRegistry()
	seen := map[string]bool{}
	for _, key := range []string{"a", "b", "c"} {
		key := key
		require.NoError(t, reg.Register(key, "click", SideEffect(func() { seen[key] = true })))
	}
	require.Equal(t, 3, reg.Len())

	h, ok := reg.Lookup("b", "click")
	require.True(t, ok)
	_, err := h.Handle(nil)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"b": true}, seen)
}

func TestRegistryDuplicateKeyOverwrites(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("btn", "click", SideEffect(func() { t.Fatal("stale handler invoked") })))

	var called bool
	require.NoError(t, reg.Register("btn", "click", SideEffect(func() { called = true })))
	require.Equal(t, 1, reg.Len())

	h, ok := reg.Lookup("btn", "click")
	require.True(t, ok)
	_, err := h.Handle(nil)
	require.NoError(t, err)
	require.True(t, called)
}

func TestRegistryFreezeRejectsLateRegistration(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("btn", "click", SideEffect(func() {})))
	reg.Freeze()

	err := reg.Register("other", "click", SideEffect(func() {}))
	require.ErrorIs(t, err, ErrRegistryFrozen)

	_, ok := reg.Lookup("btn", "click")
	require.True(t, ok)
}

func TestRegistryConcurrentLookups(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("btn", "click", HandlerFunc(func(ev *Event) (*Response, error) {
		return &Response{Success: true}, nil
	})))
	reg.Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h, ok := reg.Lookup("btn", "click")
				require.True(t, ok)
				require.NotNil(t, h)
			}
		}()
	}
	wg.Wait()
}
