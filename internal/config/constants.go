package config

const (
	// DefaultDatabasePath is the default path for the content database
	DefaultDatabasePath = "./medprep.db"

	// DefaultInputDir is where extracted page documents are read from
	DefaultInputDir = "./extracted"

	// DefaultImportWorkers bounds concurrent page imports
	DefaultImportWorkers = 4

	// DefaultStorageBucket is the blob store bucket for content images
	DefaultStorageBucket = "content-images"
)
