// Package envstore provides key/value stores that loaded entries are written to.
//
// Process is backed by the real process environment; Map is an in-memory store
// for tests and for pipelines that want the flattened entries without touching os.Environ.
//
// Example:
//
//	store := envstore.NewMap(nil)
//	loader := jsonenv.NewLoader(jsonenv.Config{Folder: "./config"}).WithStore(store)
package envstore
