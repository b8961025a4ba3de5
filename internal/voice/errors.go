package voice

import (
	"errors"
	"fmt"
)

// Common voice errors. Use errors.Is against these; the controller wraps them
// in *Error with a user-facing message.
var (
	// ErrCaptureUnavailable indicates neither recognition nor recording is
	// supported on this device.
	ErrCaptureUnavailable = errors.New("voice capture is not supported on this device")

	// ErrPermissionDenied indicates the microphone could not be opened.
	ErrPermissionDenied = errors.New("microphone access denied")

	// ErrRecognitionFailed indicates the recognizer reported an error
	// mid-session.
	ErrRecognitionFailed = errors.New("speech recognition failed")

	// ErrTranscriptionFailed indicates recorded audio could not be turned
	// into text.
	ErrTranscriptionFailed = errors.New("failed to process audio")

	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("voice controller closed")
)

// ErrorCode identifies the kind of voice failure.
type ErrorCode string

const (
	ErrorCodeUnavailable   ErrorCode = "CAPTURE_UNAVAILABLE"
	ErrorCodePermission    ErrorCode = "PERMISSION_DENIED"
	ErrorCodeRecognition   ErrorCode = "RECOGNITION_FAILED"
	ErrorCodeTranscription ErrorCode = "TRANSCRIPTION_FAILED"
)

var sentinels = map[ErrorCode]error{
	ErrorCodeUnavailable:   ErrCaptureUnavailable,
	ErrorCodePermission:    ErrPermissionDenied,
	ErrorCodeRecognition:   ErrRecognitionFailed,
	ErrorCodeTranscription: ErrTranscriptionFailed,
}

// Error is a voice failure with the message shown to the user.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's code.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Code]
	return ok && s == target
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}
