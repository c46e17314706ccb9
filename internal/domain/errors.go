package domain

import "fmt"

// ManifestError reports a tests file that is missing, unreadable or malformed
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid tests manifest: %v", e.Err)
	}
	return fmt.Sprintf("invalid tests manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// ConfigError reports a startup configuration problem
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RemoteAPIError reports a failed call to the GitHub API. StatusCode is zero
// when no HTTP response was received.
type RemoteAPIError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteAPIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Op + " failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the API answered 404
func (e *RemoteAPIError) NotFound() bool {
	return e.StatusCode == 404
}

// Transport reports whether the call failed before any HTTP response
func (e *RemoteAPIError) Transport() bool {
	return e.StatusCode == 0
}

// CommentTooLongError means the comment size budget was computed wrong
type CommentTooLongError struct {
	Length int
	Limit  int
}

func (e *CommentTooLongError) Error() string {
	return fmt.Sprintf("comment body is %d bytes, still over the %d byte limit after truncation", e.Length, e.Limit)
}
