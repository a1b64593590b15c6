package rpcwire

import "github.com/pkg/errors"

// ErrorLevel mirrors the original's three-level severity on a captured
// error.
type ErrorLevel uint32

const (
	LevelNone ErrorLevel = iota
	LevelWarning
	LevelError
)

// ErrorRecord is a wire-representable snapshot of an error: a code, a
// domain tag, a severity level, up to three optional strings, and two
// integers -- the same shape as the original's virNetMessageError.
type ErrorRecord struct {
	Code    error
	Domain  string
	Level   ErrorLevel
	Str1    string
	Str2    string
	Str3    string
	Int1    int32
	Int2    int32
	present bool
}

// SaveError captures err into rec. If rec already holds a non-nil code the
// call is a no-op: the first error wins, because cleanup paths routinely
// call this more than once with progressively less useful errors. If err is
// nil, a synthetic ErrInternal record is captured instead, so peers always
// see some explanation.
func SaveError(rec *ErrorRecord, err error) {
	if rec.present || rec.Code != nil {
		return
	}

	*rec = ErrorRecord{present: true}

	if err == nil {
		rec.Code = ErrInternal
		rec.Domain = "rpc"
		rec.Level = LevelError
		rec.Str1 = "library function returned error but did not set an error"
		return
	}

	rec.Code = errors.Cause(err)
	rec.Domain = "rpc"
	rec.Level = LevelError
	rec.Str1 = err.Error()
}

// ErrInternal is the synthetic code SaveError records when no error was
// actually set at the time of capture.
var ErrInternal = errors.New("internal error")
