package engine

import (
	"fmt"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

// referenceSource is the browser implementation of the seed fold and fraction.
const referenceSource = `
function rollingHash(s) {
	let hash = 0;
	for (let i = 0; i < s.length; i++) {
		hash = ((hash << 5) - hash) + s.charCodeAt(i);
		hash = hash & hash;
	}
	return hash;
}
function seededRandom(seed) {
	const x = Math.sin(rollingHash(seed)) * 10000;
	return x - Math.floor(x);
}
`

func loadReference(t *testing.T) (goja.Callable, goja.Callable, *goja.Runtime) {
	t.Helper()

	vm := goja.New()
	_, err := vm.RunString(referenceSource)
	require.NoError(t, err)

	hashFn, ok := goja.AssertFunction(vm.Get("rollingHash"))
	require.True(t, ok)
	randFn, ok := goja.AssertFunction(vm.Get("seededRandom"))
	require.True(t, ok)
	return hashFn, randFn, vm
}

func TestJSReferenceCompatibility(t *testing.T) {
	hashFn, randFn, vm := loadReference(t)

	seeds := []string{"", "0", "a", "zz", "abc", "hello", "Hello World", "1kq3b9", "1z141z3", "😀", "é"}
	for i := 0; i < 200; i++ {
		seeds = append(seeds, fmt.Sprintf("%x", uint32(i)*2654435761), fmt.Sprintf("seed:%d", i))
	}

	for _, seed := range seeds {
		gotHash, err := hashFn(goja.Undefined(), vm.ToValue(seed))
		require.NoError(t, err)
		require.Equal(t, int64(RollingHash(seed)), gotHash.ToInteger(), "rolling hash for %q", seed)

		gotRand, err := randFn(goja.Undefined(), vm.ToValue(seed))
		require.NoError(t, err)
		require.Equal(t, gotRand.ToFloat(), SeededRandom(seed), "fraction for %q", seed)
	}
}
