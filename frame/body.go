// Polymorphic body construction, modeled as independent free functions per
// the Design Notes ("model as independent free functions that return a
// body byte buffer plus a suggested content-type; let callers attach it").
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package frame

import (
	"encoding/base64"

	jsoniter "github.com/json-iterator/go"
	"github.com/tinylib/msgp/msgp"
)

// js mirrors the teacher's own convention (dsort/dsort.go) of a single
// package-level fastest-config jsoniter instance reused across calls.
var js = jsoniter.ConfigFastest

// NewJSONBody marshals v with jsoniter and returns the body bytes plus the
// content-type value a caller should attach via OverrideContentType/
// AppendContentType ("application/json" with the given encoding tag).
func NewJSONBody(v any, enc Encoding) (body []byte, contentType string, err error) {
	body, err = js.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return body, contentTypeValue("application/json", enc), nil
}

// NewMsgpackBody marshals v with github.com/tinylib/msgp and returns the
// body bytes plus a suggested content-type. This is a SPEC_FULL addition:
// the distilled spec only worked out the JSON body helper; msgpack is a
// second concrete encoding for applications that want a compact binary
// body instead.
func NewMsgpackBody(v msgp.Marshaler) (body []byte, contentType string, err error) {
	body, err = v.MarshalMsg(nil)
	if err != nil {
		return nil, "", err
	}
	return body, "application/msgpack", nil
}

// NewStringBody encodes s as bytes in the given encoding. Only ASCII-safe
// encodings are supported by this implementation (see spec.md §3: values
// are restricted to ASCII for compatibility); base64 is supported as a
// pass-through encode.
func NewStringBody(s string, enc Encoding) (body []byte, contentType string) {
	switch enc {
	case EncodingBase64:
		return []byte(base64.StdEncoding.EncodeToString([]byte(s))), contentTypeValue(DefaultMime, enc)
	default:
		return []byte(s), contentTypeValue(DefaultMime, enc)
	}
}

// NewBufferBody references an existing buffer slice without copying.
func NewBufferBody(buf []byte) []byte { return buf }

// NewBase64Body base64-encodes src into a freshly allocated buffer.
func NewBase64Body(src []byte) []byte {
	dst := make([]byte, base64.StdEncoding.EncodedLen(len(src)))
	base64.StdEncoding.Encode(dst, src)
	return dst
}

// CopyBody deep-copies the region [off:off+n) of src into a new buffer.
func CopyBody(src []byte, off, n int) []byte {
	dst := make([]byte, n)
	copy(dst, src[off:off+n])
	return dst
}
