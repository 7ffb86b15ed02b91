package types

// Metadata is a map of string key-value pairs attached to a resource,
// stored as JSONB in the database.
type Metadata map[string]string
