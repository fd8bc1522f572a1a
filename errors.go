package eserial

import "eserial/internal/errs"

type (
	UnsupportedTypeError  = errs.UnsupportedTypeError
	VersionMismatchError  = errs.VersionMismatchError
	SchemaMismatchError   = errs.SchemaMismatchError
	FormatError           = errs.FormatError
	TruncatedStreamError  = errs.TruncatedStreamError
	UnknownReferenceError = errs.UnknownReferenceError
	FieldValueError       = errs.FieldValueError
	IOError               = errs.IOError
)

// Sentinels matched by the error types above through errors.Is.
var (
	ErrUnsupportedType = errs.ErrUnsupportedType
	ErrVersionMismatch = errs.ErrVersionMismatch
	ErrSchemaMismatch  = errs.ErrSchemaMismatch
	ErrFormat          = errs.ErrFormat
	ErrTruncated       = errs.ErrTruncated
	ErrUnknownRef      = errs.ErrUnknownRef
	ErrFieldValue      = errs.ErrFieldValue
	ErrIO              = errs.ErrIO
)
