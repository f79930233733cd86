package annotation

import "fmt"

// GrammarError reports a malformed token stream. Fields parsed before the
// error are kept by the caller; later fields keep their defaults.
type GrammarError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("annotation grammar: %s at offset %d", e.Msg, e.Offset)
}

// UnknownEnumLiteral reports an enumeration literal missing from the
// literal table. Callers substitute the field default.
type UnknownEnumLiteral struct {
	Enum    string
	Literal string
}

func (e *UnknownEnumLiteral) Error() string {
	return fmt.Sprintf("unknown %s literal %q", e.Enum, e.Literal)
}

// PartialParse reports a positional argument list with fewer fields than
// the record requires. The fields that were present have been assigned.
type PartialParse struct {
	Record string
	Got    int
	Want   int
}

func (e *PartialParse) Error() string {
	return fmt.Sprintf("%s: partial annotation, got %d of %d fields", e.Record, e.Got, e.Want)
}

// ImageDecodeFailure reports image bytes that could not be decoded
type ImageDecodeFailure struct {
	Source string
	Err    error
}

func (e *ImageDecodeFailure) Error() string {
	return fmt.Sprintf("failed to decode image from %s: %v", e.Source, e.Err)
}

func (e *ImageDecodeFailure) Unwrap() error { return e.Err }

// MissingFile reports a referenced file that could not be read
type MissingFile struct {
	Path string
	Err  error
}

func (e *MissingFile) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *MissingFile) Unwrap() error { return e.Err }

// FieldError attaches the name of the annotation field to a parse error
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
