package errs

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType = errors.New("eserial: unsupported type")
	ErrVersionMismatch = errors.New("eserial: type version mismatch")
	ErrSchemaMismatch  = errors.New("eserial: type schema mismatch")
	ErrFormat          = errors.New("eserial: malformed stream")
	ErrTruncated       = errors.New("eserial: truncated stream")
	ErrUnknownRef      = errors.New("eserial: unknown reference")
	ErrFieldValue      = errors.New("eserial: field value does not match its kind")
	ErrIO              = errors.New("eserial: io failure")
)

var (
	ErrInvalidDescriptor = errors.New("schema: invalid type descriptor")
	ErrChecksumMismatch  = errors.New("snapshot: checksum mismatch")
	ErrUnknownCompressor = errors.New("snapshot: unknown compressor")
	ErrUnknownSerializer = errors.New("snapshot: unknown serializer")
	ErrNotFound          = errors.New("store: key not found")
	ErrTooLarge          = errors.New("compress: uncompressed data exceeds limit")
)

var (
	GraphSerializeTypError   = errors.New("serialize: serialization must be schema.Object type")
	GraphDeserializeTypError = errors.New("serialize: deserialization must be *schema.Object type")
)

// UnsupportedTypeError reports a runtime type without a registered descriptor.
type UnsupportedTypeError struct {
	TypeID string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedType, e.TypeID)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// VersionMismatchError means the stream was written under another descriptor
// version. The data has to be migrated out of band.
type VersionMismatchError struct {
	TypeID        string
	StreamVersion uint32
	LocalVersion  uint32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("%s: %q stream=%d local=%d", ErrVersionMismatch, e.TypeID, e.StreamVersion, e.LocalVersion)
}

func (e *VersionMismatchError) Is(target error) bool { return target == ErrVersionMismatch }

// SchemaMismatchError means the versions agree but the field layouts do not.
type SchemaMismatchError struct {
	TypeID string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: %q %s", ErrSchemaMismatch, e.TypeID, e.Reason)
}

func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", ErrFormat, e.Offset, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// TruncatedStreamError reports a source that ended in the middle of a record.
type TruncatedStreamError struct {
	Offset int64
	Err    error
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("%s at offset %d", ErrTruncated, e.Offset)
}

func (e *TruncatedStreamError) Is(target error) bool { return target == ErrTruncated }

func (e *TruncatedStreamError) Unwrap() error { return e.Err }

type UnknownReferenceError struct {
	ID uint32
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s: object %d is never defined", ErrUnknownRef, e.ID)
}

func (e *UnknownReferenceError) Is(target error) bool { return target == ErrUnknownRef }

// FieldValueError reports a getter that returned a value of the wrong Go type
// for the declared field kind.
type FieldValueError struct {
	TypeID string
	Field  string
	Want   string
	Got    any
}

func (e *FieldValueError) Error() string {
	return fmt.Sprintf("%s: %s.%s want %s, got %T", ErrFieldValue, e.TypeID, e.Field, e.Want, e.Got)
}

func (e *FieldValueError) Is(target error) bool { return target == ErrFieldValue }

// IOError wraps a failure of the underlying sink or source.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrIO, e.Op, e.Err)
}

func (e *IOError) Is(target error) bool { return target == ErrIO }

func (e *IOError) Unwrap() error { return e.Err }

func UnknownCompressorErr(v any) error {
	return fmt.Errorf("%w: %v", ErrUnknownCompressor, v)
}

func UnknownSerializerErr(code byte) error {
	return fmt.Errorf("%w: %d", ErrUnknownSerializer, code)
}

func NotFoundErr(key string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}
