package types

import "fmt"

// Result is the outcome of a check, patch or install step.
type Result int

// Result codes. Values are stable; new codes are only appended.
const (
	Success Result = iota
	NoCompatibleAppInstalled
	FailedToCopyFiles
	FailedToCheckHashCopiedFiles
	SystemXMLInformationNotFound
	SystemXMLParsingFailed
	SystemXMLHashMismatchRestoreFailed
	SystemXMLHashMismatch
	RPXHashMismatch
	RPXHashMismatchRestoreFailed
	COSXMLParsingFailed
	COSXMLHashMismatch
	COSXMLHashMismatchRestoreFailed
	MallocFailed
	FSTHashMismatch
	FSTHashMismatchRestoreFailed
	FSTHeaderMismatch
	FSTNoUsableSectionFound
	FailedToLoadFile
	FSTParsingFailed
)

// UnknownError is returned by ErrorMessage for values outside the enumeration.
const UnknownError = "UNKNOWN ERROR"

var messages = map[Result]string{
	Success:                            "Success",
	NoCompatibleAppInstalled:           "NO_COMPATIBLE_APP_INSTALLED",
	FailedToCopyFiles:                  "FAILED_TO_COPY_FILES",
	FailedToCheckHashCopiedFiles:       "FAILED_TO_CHECK_HASH_COPIED_FILES",
	SystemXMLInformationNotFound:       "SYSTEM_XML_INFORMATION_NOT_FOUND",
	SystemXMLParsingFailed:             "SYSTEM_XML_PARSING_FAILED",
	SystemXMLHashMismatchRestoreFailed: "SYSTEM_XML_HASH_MISMATCH_RESTORE_FAILED",
	SystemXMLHashMismatch:              "SYSTEM_XML_HASH_MISMATCH",
	RPXHashMismatch:                    "RPX_HASH_MISMATCH",
	RPXHashMismatchRestoreFailed:       "RPX_HASH_MISMATCH_RESTORE_FAILED",
	COSXMLParsingFailed:                "COS_XML_PARSING_FAILED",
	COSXMLHashMismatch:                 "COS_XML_HASH_MISMATCH",
	COSXMLHashMismatchRestoreFailed:    "COS_XML_HASH_MISMATCH_RESTORE_FAILED",
	MallocFailed:                       "MALLOC_FAILED",
	FSTHashMismatch:                    "FST_HASH_MISMATCH",
	FSTHashMismatchRestoreFailed:       "FST_HASH_MISMATCH_RESTORE_FAILED",
	FSTHeaderMismatch:                  "FST_HEADER_MISMATCH",
	FSTNoUsableSectionFound:            "FST_NO_USABLE_SECTION_FOUND",
	FailedToLoadFile:                   "FAILED_TO_LOAD_FILE",
	FSTParsingFailed:                   "FST_PARSING_FAILED",
}

// ErrorMessage returns the message for r. It never fails: values outside the
// enumeration map to UnknownError.
func ErrorMessage(r Result) string {
	if msg, ok := messages[r]; ok {
		return msg
	}
	return UnknownError
}

// String implements fmt.Stringer.
func (r Result) String() string { return ErrorMessage(r) }

// OK reports whether r is Success.
func (r Result) OK() bool { return r == Success }

// Known reports whether r is part of the enumeration.
func (r Result) Known() bool {
	_, ok := messages[r]
	return ok
}

// MarshalText encodes r as its message so JSON output stays readable.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(ErrorMessage(r)), nil
}

// UnmarshalText is the inverse of MarshalText.
func (r *Result) UnmarshalText(b []byte) error {
	for code, msg := range messages {
		if msg == string(b) {
			*r = code
			return nil
		}
	}
	return fmt.Errorf("types: unknown result %q", b)
}

// AllResults lists every code in ascending order.
func AllResults() []Result {
	out := make([]Result, 0, len(messages))
	for r := Success; r <= FSTParsingFailed; r++ {
		out = append(out, r)
	}
	return out
}
