// Package jsonenv loads a folder of JSON configuration files into environment variables.
//
// Quick Start:
//
//	// config/db.json: {"host":"localhost","pool":{"max":10}}
//	err := jsonenv.Load(ctx, jsonenv.Config{Folder: "./config"})
//	// DB_HOST=localhost, DB_POOL_MAX=10
//
// Every file in the folder (one level deep) is decoded into a tree and flattened: keys are
// joined with "_" under the upper-cased file base name and upper-cased. Leaf keys can be
// filtered with IncludeEntry/ExcludeEntry, file names with IncludeFolder/ExcludeFolder.
// Keys that already exist are kept (Ignore), replaced (Overwrite) or rejected (Throw).
//
// A file's root must be an object. A top-level array or scalar (`[1,2]`, `"x"`) is treated
// like any other invalid file: an *InvalidJSONError wrapping tree.ErrNotObject in Strict
// mode, skipped with a warning otherwise.
//
// Unset Config fields fall back to JSONENVLOADER_CONFIG_* environment variables.
//
// Load processes files one at a time; LoadConcurrent fans out one goroutine per file.
// Use NewLoader with WithStore to write into an envstore.Map instead of the process environment.
package jsonenv
