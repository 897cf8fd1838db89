// Package tree decodes configuration documents into ordered key/value trees.
//
// A tree is a Node (ordered fields) whose values are either a Scalar or another Node.
// JSON is always supported; YAML, TOML and dotenv are decoded when enabled, detected
// from the file extension (.yaml, .yml, .toml, .env). The document root must be a
// mapping; a top-level array or scalar fails with ErrNotObject.
//
// Example:
//
//	node, err := tree.Decode(tree.JSON, []byte(`{"db":{"host":"localhost"}}`))
//	for _, f := range node {
//	    switch v := f.Value.(type) {
//	    case tree.Scalar:
//	        // leaf
//	    case tree.Node:
//	        // nested mapping
//	    }
//	}
package tree
