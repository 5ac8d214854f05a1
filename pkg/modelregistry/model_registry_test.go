package modelregistry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID int64 `json:"id"`
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := New[string]()

	require.NoError(t, r.Register("posts", "p"))
	require.NoError(t, r.Register("users", "u"))

	v, err := r.Get("users")
	require.NoError(t, err)
	assert.Equal(t, "u", v)

	_, err = r.Get("comments")
	assert.EqualError(t, err, "resource comments not found")

	assert.Equal(t, []string{"posts", "users"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestRegistryRejectsDuplicatesAndEmptyNames(t *testing.T) {
	r := New[int]()

	require.NoError(t, r.Register("posts", 1))
	assert.EqualError(t, r.Register("posts", 2), "resource posts already registered")
	assert.Error(t, r.Register("", 3))

	v, err := r.Get("posts")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestRegistryEachKeepsOrder(t *testing.T) {
	r := New[int]()
	for i, name := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(name, i))
	}

	var seen []string
	r.Each(func(name string, v int) {
		seen = append(seen, name)
	})
	assert.Equal(t, []string{"c", "a", "b"}, seen)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(string(rune('a'+i%26)), i)
			_, _ = r.Get("a")
			_ = r.Names()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, r.Len())
}

func TestValidateModel(t *testing.T) {
	typ, err := ValidateModel(&[]widget{})
	require.NoError(t, err)
	assert.Equal(t, "widget", typ.Name())

	_, err = ValidateModel(nil)
	assert.Error(t, err)

	_, err = ValidateModel(42)
	assert.Error(t, err)
}
