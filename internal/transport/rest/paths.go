package rest

// Service endpoints. Index-scoped paths get "/{index}" appended by Post.
const (
	PathListIndexes  = "/list-indexes"
	PathDeleteIndex  = "/delete-index"
	PathDatabaseInfo = "/database-info"
	PathUpsert       = "/upsert"
	PathSearch       = "/search"
	PathFetch        = "/fetch"
	PathDelete       = "/delete"
	PathRange        = "/range"
	PathReset        = "/reset"
)
