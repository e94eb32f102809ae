// Package primetime implements the prime time protocol: newline-delimited
// JSON requests asking whether a number is prime.
package primetime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"unicode/utf8"
)

// MethodIsPrime is the only method the protocol defines.
const MethodIsPrime = "isPrime"

// ErrMalformedRequest is wrapped by every error ParseRequest returns.
var ErrMalformedRequest = errors.New("malformed request")

// Request is a validated isPrime request.
type Request struct {
	Method string
	// Number is the JSON number literal exactly as sent.
	Number json.Number
}

// Response answers a Request.
type Response struct {
	Method string `json:"method"`
	Prime  bool   `json:"prime"`
}

// ParseRequest decodes and validates one request line. The line must be valid
// UTF-8 and hold a single JSON object with "method" equal to "isPrime" and a
// numeric "number". Keys match exactly; extra fields are ignored.
func ParseRequest(line []byte) (Request, error) {
	if !utf8.Valid(line) {
		return Request{}, fmt.Errorf("%w: invalid UTF-8", ErrMalformedRequest)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	rawMethod, ok := fields["method"]
	if !ok {
		return Request{}, fmt.Errorf("%w: missing method", ErrMalformedRequest)
	}
	var method *string
	if err := json.Unmarshal(rawMethod, &method); err != nil {
		return Request{}, fmt.Errorf("%w: method: %w", ErrMalformedRequest, err)
	}
	if method == nil {
		return Request{}, fmt.Errorf("%w: null method", ErrMalformedRequest)
	}
	if *method != MethodIsPrime {
		return Request{}, fmt.Errorf("%w: unknown method %q", ErrMalformedRequest, *method)
	}

	raw, ok := fields["number"]
	if !ok {
		return Request{}, fmt.Errorf("%w: missing number", ErrMalformedRequest)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !(raw[0] == '-' || ('0' <= raw[0] && raw[0] <= '9')) {
		return Request{}, fmt.Errorf("%w: number is not numeric: %s", ErrMalformedRequest, raw)
	}
	return Request{Method: *method, Number: json.Number(raw)}, nil
}

// IsPrime reports whether the requested number is prime. Only a literal
// written as a plain non-negative integer that fits in a uint64 can be prime;
// anything with a sign, fraction or exponent is not.
func (r Request) IsPrime() bool {
	n, err := strconv.ParseUint(string(r.Number), 10, 64)
	if err != nil {
		return false
	}
	return IsPrime(n)
}

// IsPrime reports whether n is prime. ProbablyPrime is exact for inputs below
// 2^64.
func IsPrime(n uint64) bool {
	return new(big.Int).SetUint64(n).ProbablyPrime(0)
}
