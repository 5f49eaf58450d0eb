// Package fault defines the typed failure taxonomy shared by all core
// components.
//
// Callers (the HTTP layer lives outside this module) classify failures with
// the Is* predicates rather than matching on error strings. NotFound,
// Validation, and LiquidityConflict are expected outcomes. Batch and
// CacheDecode are recovered locally. Consistency signals a broken invariant
// and is fatal to the operation that detects it.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a core failure.
type Kind int

const (
	// KindNotFound: no rows matched (no purchases for user, unknown symbol,
	// no ticks in range).
	KindNotFound Kind = iota + 1

	// KindValidation: malformed input (inverted date range, negative
	// interval, missing ingestion headers).
	KindValidation

	// KindLiquidityConflict: purchase quantity exceeds the remaining
	// quantity on the instrument's latest tick.
	KindLiquidityConflict

	// KindConsistency: the latest-tick pointer is missing or stale. This is
	// a bug, not an input problem.
	KindConsistency

	// KindBatch: a single ingestion batch failed. Non-fatal to the pipeline.
	KindBatch

	// KindCacheDecode: a cached entry is corrupt or schema-incompatible.
	// Recovered by evicting the entry and treating the read as a miss.
	KindCacheDecode
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindLiquidityConflict:
		return "liquidity_conflict"
	case KindConsistency:
		return "consistency"
	case KindBatch:
		return "batch"
	case KindCacheDecode:
		return "cache_decode"
	default:
		return "unknown"
	}
}

// Error is a classified core failure, optionally wrapping a cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the failure classification.
func (e *Error) Kind() Kind { return e.kind }

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error.
func Validation(format string, args ...any) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// LiquidityConflict builds a KindLiquidityConflict error.
func LiquidityConflict(format string, args ...any) error {
	return &Error{kind: KindLiquidityConflict, msg: fmt.Sprintf(format, args...)}
}

// Consistency builds a KindConsistency error.
func Consistency(format string, args ...any) error {
	return &Error{kind: KindConsistency, msg: fmt.Sprintf(format, args...)}
}

// Batch wraps err as a per-batch ingestion failure for the named batch.
func Batch(name string, err error) error {
	return &Error{kind: KindBatch, msg: "batch " + name, err: err}
}

// CacheDecode wraps err as a cache entry decode failure for key.
func CacheDecode(key string, err error) error {
	return &Error{kind: KindCacheDecode, msg: "decode cached entry " + key, err: err}
}

// is walks the whole chain so a Batch error wrapping a Validation cause
// answers true for both kinds.
func is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.kind == kind {
			return true
		}
		err = e.err
	}
	return false
}

// IsNotFound reports whether err is classified KindNotFound.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsValidation reports whether err is classified KindValidation.
func IsValidation(err error) bool { return is(err, KindValidation) }

// IsLiquidityConflict reports whether err is classified KindLiquidityConflict.
func IsLiquidityConflict(err error) bool { return is(err, KindLiquidityConflict) }

// IsConsistency reports whether err is classified KindConsistency.
func IsConsistency(err error) bool { return is(err, KindConsistency) }

// IsBatch reports whether err is classified KindBatch.
func IsBatch(err error) bool { return is(err, KindBatch) }

// IsCacheDecode reports whether err is classified KindCacheDecode.
func IsCacheDecode(err error) bool { return is(err, KindCacheDecode) }
