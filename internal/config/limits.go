package config

const (
	// MaxItemNameLength is the maximum length for folder and file names.
	// Same bound the asset API applies to its VARCHAR(255) name columns.
	MaxItemNameLength = 255

	// MaxTreeItems caps folders+files in a single tree. Every mutation
	// rewrites the whole snapshot, so the blob has to stay small.
	MaxTreeItems = 10000

	// MaxUploadBytes is the largest file accepted by the upload endpoint.
	MaxUploadBytes = 50 << 20

	// DefaultFolderName is used when a folder is created without a name.
	DefaultFolderName = "New Folder"
)
