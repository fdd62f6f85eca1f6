// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of the store interfaces used
// throughout the application, so that service, task and API tests share one
// consistent fake instead of defining inline mocks in every test file.
//
// The store mocks keep their data in memory and behave like a real store by
// default. Each method can be overridden through a function field to inject
// failures:
//
//	import "github.com/phrazzld/vocab-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    cacheStore := mocks.NewMockValidationCacheStore()
//	    cacheStore.GetFn = func(ctx context.Context, key string) (*domain.CacheEntry, error) {
//	        return nil, store.ErrUnavailable
//	    }
//
//	    // Use the mock in your test...
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
package mocks
