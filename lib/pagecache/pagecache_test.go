package pagecache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	now := time.Unix(1700000000, 0)
	store, err := NewStoreWithClock(func() time.Time { return now })
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store, &now
}

func TestProducerCalledOncePerTTL(t *testing.T) {
	store, now := newTestStore(t)

	calls := 0
	produce := func() (string, error) {
		calls++
		return "value", nil
	}

	v, err := GetOrCreate(store, "page", DefaultTTL, produce)
	require.NoError(t, err)
	require.Equal(t, "value", v)

	v, err = GetOrCreate(store, "page", DefaultTTL, produce)
	require.NoError(t, err)
	require.Equal(t, "value", v)
	require.Equal(t, 1, calls)

	*now = now.Add(DefaultTTL + time.Second)

	_, err = GetOrCreate(store, "page", DefaultTTL, produce)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestInvalidateCascades(t *testing.T) {
	store, _ := newTestStore(t)
	store.DependsOn("devices", "page")

	pageCalls := 0
	deviceCalls := 0
	otherCalls := 0

	fetch := func() {
		_, err := GetOrCreate(store, "page", DefaultTTL, func() (int, error) {
			pageCalls++
			return pageCalls, nil
		})
		require.NoError(t, err)
		_, err = GetOrCreate(store, "devices", DefaultTTL, func() (int, error) {
			deviceCalls++
			return deviceCalls, nil
		})
		require.NoError(t, err)
		_, err = GetOrCreate(store, "unrelated", DefaultTTL, func() (int, error) {
			otherCalls++
			return otherCalls, nil
		})
		require.NoError(t, err)
	}

	fetch()
	require.NoError(t, store.Invalidate("page"))
	fetch()

	require.Equal(t, 2, pageCalls)
	require.Equal(t, 2, deviceCalls)
	require.Equal(t, 1, otherCalls)
}

func TestInvalidateUnrelatedKeyDoesNotCascade(t *testing.T) {
	store, _ := newTestStore(t)
	store.DependsOn("devices", "page")

	deviceCalls := 0
	get := func() {
		_, err := GetOrCreate(store, "devices", DefaultTTL, func() (int, error) {
			deviceCalls++
			return deviceCalls, nil
		})
		require.NoError(t, err)
	}

	get()
	require.NoError(t, store.Invalidate("unrelated"))
	get()
	require.Equal(t, 1, deviceCalls)
}

func TestProduceErrorNotCached(t *testing.T) {
	store, _ := newTestStore(t)

	calls := 0
	_, err := GetOrCreate(store, "page", DefaultTTL, func() (string, error) {
		calls++
		return "", errProduce
	})
	require.ErrorIs(t, err, errProduce)

	v, err := GetOrCreate(store, "page", DefaultTTL, func() (string, error) {
		calls++
		return "recovered", nil
	})
	require.NoError(t, err)
	require.Equal(t, "recovered", v)
	require.Equal(t, 2, calls)
}

var errProduce = errTest("produce failed")

type errTest string

func (e errTest) Error() string { return string(e) }
