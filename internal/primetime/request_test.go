package primetime

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantErr   bool
		wantPrime bool
	}{
		{name: "prime", line: `{"method":"isPrime","number":97}`, wantPrime: true},
		{name: "not prime", line: `{"method":"isPrime","number":98}`},
		{name: "two", line: `{"method":"isPrime","number":2}`, wantPrime: true},
		{name: "one", line: `{"method":"isPrime","number":1}`},
		{name: "zero", line: `{"method":"isPrime","number":0}`},
		{name: "negative", line: `{"method":"isPrime","number":-47}`},
		{name: "negative zero", line: `{"method":"isPrime","number":-0}`},
		{name: "float", line: `{"method":"isPrime","number":4.24}`},
		{name: "float with zero fraction", line: `{"method":"isPrime","number":7.0}`},
		{name: "exponent", line: `{"method":"isPrime","number":7e0}`},
		{name: "beyond uint64", line: `{"method":"isPrime","number":340282366920938463463374607431768211297}`},
		{name: "large prime", line: `{"method":"isPrime","number":18446744073709551557}`, wantPrime: true},
		{name: "extra fields", line: `{"number":13,"method":"isPrime","extra":[1,2]}` + "\n", wantPrime: true},
		{name: "malformed json", line: `{ method "isPrime", number: 97}`, wantErr: true},
		{name: "empty line", line: "\n", wantErr: true},
		{name: "missing number", line: `{"method":"isPrime"}`, wantErr: true},
		{name: "missing method", line: `{"number":97}`, wantErr: true},
		{name: "wrong method", line: `{"method":"isNotPrime","number":97}`, wantErr: true},
		{name: "null method", line: `{"method":null,"number":97}`, wantErr: true},
		{name: "null number", line: `{"method":"isPrime","number":null}`, wantErr: true},
		{name: "numeric method", line: `{"method":1,"number":97}`, wantErr: true},
		{name: "string number", line: `{"method":"isPrime","number":"97"}`, wantErr: true},
		{name: "bool number", line: `{"method":"isPrime","number":true}`, wantErr: true},
		{name: "object number", line: `{"method":"isPrime","number":{}}`, wantErr: true},
		{name: "array", line: `[{"method":"isPrime","number":97}]`, wantErr: true},
		{name: "null", line: `null`, wantErr: true},
		{name: "two objects", line: `{"method":"isPrime","number":3}{}`, wantErr: true},
		{name: "upper case keys", line: `{"METHOD":"isPrime","NUMBER":7}`, wantErr: true},
		{name: "capitalised method key", line: `{"Method":"isPrime","number":7}`, wantErr: true},
		{name: "capitalised number key", line: `{"method":"isPrime","Number":7}`, wantErr: true},
		{name: "invalid utf-8", line: "{\"method\":\"isPrime\",\"number\":7,\"x\":\"\xff\"}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.line))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedRequest) {
					t.Fatalf("want: ErrMalformedRequest, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := req.IsPrime(); got != tt.wantPrime {
				t.Errorf("want: prime=%t, got: %t", tt.wantPrime, got)
			}
		})
	}
}

func TestIsPrime(t *testing.T) {
	var primes []uint64
	for n := range uint64(50) {
		if IsPrime(n) {
			primes = append(primes, n)
		}
	}
	want := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}
	if diff := cmp.Diff(want, primes); diff != "" {
		t.Errorf("primes below 50 (-want +got):\n%s", diff)
	}
	if IsPrime(561) {
		t.Error("561 is a Carmichael number, not a prime")
	}
}
