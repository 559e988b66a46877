// Package errs defines the sentinel errors shared across jobscan packages.
//
// All errors are plain sentinel values created with errors.New. Packages wrap
// them with fmt.Errorf("%w: detail", ...) to attach context while keeping the
// sentinel matchable with errors.Is. Callers should always match with
// errors.Is rather than direct comparison, since most call sites add detail:
//
//	doc, err := token.Tokenize(data)
//	if errors.Is(err, errs.ErrTruncatedJSON) {
//	    // input ended before the document was complete
//	}
package errs

import "errors"

// Tokenizer errors. Both indicate the input bytes cannot yield a token
// document; they are fatal to the parse.
var (
	// ErrInvalidJSON indicates the input bytes do not form valid JSON:
	// a malformed literal, an unexpected character, or unbalanced structure.
	ErrInvalidJSON = errors.New("invalid JSON document")

	// ErrTruncatedJSON indicates the input ended before a value was complete:
	// an unclosed object, array or string, or an empty input.
	ErrTruncatedJSON = errors.New("truncated JSON document")
)

// Walker errors. Each indicates the document is valid JSON but does not match
// the expected metric document shape. The walk stops at the first mismatch.
var (
	// ErrUnexpectedRoot indicates the top-level value is not an object.
	ErrUnexpectedRoot = errors.New("root element must be an object")

	// ErrUnexpectedKeyType indicates an object key token is not a string.
	ErrUnexpectedKeyType = errors.New("object key must be a string")

	// ErrUnexpectedValueType indicates a value does not have the type the
	// schema requires at its position: a metric value that is not an object,
	// a series that is not an array, a series entry that is not an object,
	// or a data value that is neither an array nor a string.
	ErrUnexpectedValueType = errors.New("unexpected value type")
)

// Archive errors.
var (
	// ErrInvalidArchive indicates the archive root is missing, not a
	// readable directory, or declares an unsupported layout version.
	ErrInvalidArchive = errors.New("invalid job archive")

	// ErrJobNotFound indicates no data file exists for the requested job in
	// any supported compression variant.
	ErrJobNotFound = errors.New("job data not found")

	// ErrUnsupportedCompression indicates a data file extension that no
	// registered decompressor handles.
	ErrUnsupportedCompression = errors.New("unsupported compression format")
)
