package insulate

import (
	"runtime"
	"sync"
	"weak"

	"github.com/funvibe/jessie/internal/object"
)

type fnKey = weak.Pointer[object.Function]

// registry memoises wrappers without keeping either side alive. Entries are
// dropped by cleanups once the function they are keyed on is collected.
type registry struct {
	mu       sync.Mutex
	wrappers map[fnKey]fnKey    // original -> wrapper
	own      map[fnKey]struct{} // every live wrapper
}

func newRegistry() *registry {
	return &registry{
		wrappers: make(map[fnKey]fnKey),
		own:      make(map[fnKey]struct{}),
	}
}

// isWrapper reports whether fn was produced by this registry.
func (r *registry) isWrapper(fn *object.Function) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.own[weak.Make(fn)]
	return ok
}

// lookupOrCreate returns fn itself when it already is a wrapper, the
// memoised wrapper of fn when it is still alive, or a new one from create.
func (r *registry) lookupOrCreate(fn *object.Function, create func() *object.Function) *object.Function {
	key := weak.Make(fn)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.own[key]; ok {
		return fn
	}
	if wk, ok := r.wrappers[key]; ok {
		if w := wk.Value(); w != nil {
			return w
		}
	} else {
		runtime.AddCleanup(fn, r.forgetOriginal, key)
	}

	w := create()
	wkey := weak.Make(w)
	r.wrappers[key] = wkey
	r.own[wkey] = struct{}{}
	runtime.AddCleanup(w, r.forgetWrapper, wkey)
	return w
}

func (r *registry) forgetOriginal(key fnKey) {
	r.mu.Lock()
	delete(r.wrappers, key)
	r.mu.Unlock()
}

func (r *registry) forgetWrapper(key fnKey) {
	r.mu.Lock()
	delete(r.own, key)
	r.mu.Unlock()
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wrappers)
}
