package otel

import (
	"reflect"
	"testing"
)

func TestParseHeadersSplitsKeyValuePairs(t *testing.T) {
	got := ParseHeaders("x-api-key=secret, x-env = prod")
	want := map[string]string{"x-api-key": "secret", "x-env": "prod"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseHeaders = %v, want %v", got, want)
	}
}

func TestParseHeadersSkipsMalformedAndEmptyEntries(t *testing.T) {
	got := ParseHeaders("a=1,, novalue, =2, b=3")
	want := map[string]string{"a": "1", "b": "3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseHeaders = %v, want %v", got, want)
	}
}

func TestParseHeadersEmptyStringReturnsEmptyMap(t *testing.T) {
	got := ParseHeaders("")
	if len(got) != 0 {
		t.Fatalf("ParseHeaders(\"\") = %v, want empty map", got)
	}
}
