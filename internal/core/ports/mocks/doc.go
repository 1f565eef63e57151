// Package mocks provides test doubles for ports interfaces.
//
// These mocks are designed to be simple, thread-safe, in-memory implementations
// suitable for unit testing. Each mock provides:
//
//   - Default behavior that returns reasonable test values
//   - Callback functions (xxxFn) for customizing behavior per test
//   - Helper methods for setting state directly
//   - Call counters so tests can assert which collaborators ran
//
// # Usage Example
//
//	func TestMyWorker(t *testing.T) {
//		quota := mocks.NewQuotaService()
//		quota.SetBalance("user-1", 5000)
//
//		w := NewWorker(..., quota, ...)
//		// ... test worker behavior
//	}
//
// # Available Mocks
//
//   - AssetRepository: implements ports.AssetRepository
//   - TemplateCatalog: implements ports.TemplateCatalog
//   - SuggestionRepository: implements ports.SuggestionRepository
//   - QuotaService: implements ports.QuotaService
//   - CacheStore: implements ports.CacheStore
//   - ScoutQueue: implements ports.ScoutQueue
//   - AssetLocker: implements ports.AssetLocker
//   - ThemeScorer: implements ports.ThemeScorer
//
// Additional mocks can be added as needed following the same patterns.
package mocks
