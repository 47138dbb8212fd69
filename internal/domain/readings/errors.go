package readings

import "errors"

// Sentinel errors classifying query failures. Handlers map these onto HTTP
// status codes; wrap with fmt.Errorf("%w: ...") to add detail.
var (
	// ErrInvalidReadingType marks a reading type outside the supported set.
	ErrInvalidReadingType = errors.New("invalid reading type")

	// ErrInvalidArgument marks a malformed request field such as a bad date
	// filter or timestamp.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedAnalysis marks a request for an analysis the reading
	// type cannot support, such as a threshold scan over sleep rows.
	ErrUnsupportedAnalysis = errors.New("unsupported analysis")

	// ErrUpstream marks a storage failure. The original cause is wrapped so
	// logs keep the detail while clients get a stable classification.
	ErrUpstream = errors.New("upstream error")
)
