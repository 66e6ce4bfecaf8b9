// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBody is the maximum size for JSON request bodies.
	MaxJSONBody = 10 << 20 // 10 MB

	// MaxImageUpload is the maximum size of one multipart image upload request.
	MaxImageUpload = 50 << 20 // 50 MB

	// MaxMultipartMemory is how much of a multipart body is buffered in memory
	// before spilling to temp files.
	MaxMultipartMemory = 8 << 20 // 8 MB

	// MaxImagesPerUpload caps the files accepted by one image attach call.
	MaxImagesPerUpload = 10
)
