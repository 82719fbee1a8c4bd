package distribution

import "fmt"

// FileDescriptor describes one uploaded file held in a local temp file
type FileDescriptor struct {
	Path         string // Temporary path on local disk
	OriginalName string // Filename supplied by the client
	Size         int64  // Size in bytes
	MimeType     string // Detected MIME type (informational)
}

// ObjectSpec contains the parameters needed to create one remote object
type ObjectSpec struct {
	Name        string // Target object name
	ParentID    string // Destination folder (or key prefix)
	ContentType string // Content type sent with the body
}

// RemoteObject is the result of a successful remote create
type RemoteObject struct {
	ID   string
	Name string
	Size int64
}

// Response is the JSON envelope returned to upload callers
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const (
	// DefaultContentType is sent for every object unless sniffing is enabled
	DefaultContentType = "application/octet-stream"

	// DefaultField is the multipart field that carries the files
	DefaultField = "myFile"
)

// SuccessResponse builds the envelope for n uploaded files
func SuccessResponse(n int) Response {
	return Response{Success: true, Message: fmt.Sprintf("%d file(s) uploaded successfully!", n)}
}

// ErrorResponse builds the envelope for a failed request
func ErrorResponse(err error) Response {
	return Response{Success: false, Message: "Error: " + err.Error()}
}

// NoFilesResponse is returned when a request carries no files
func NoFilesResponse() Response {
	return Response{Success: false, Message: ErrNoFiles.Error()}
}
