package frame_test

import (
	"strconv"
	"testing"

	"github.com/ais-stomp/stompclient/frame"
)

func TestAppendAndGetHeaderValue(t *testing.T) {
	f := frame.New("SEND", 4)
	f.AppendHeader("Destination", "/queue/a")
	f.AppendHeader("destination", "/queue/b") // duplicate, different case

	if got := f.GetHeaderValue("DESTINATION"); got != "/queue/b" {
		t.Fatalf("GetHeaderValue: got %q, want last-appended value", got)
	}
	if len(f.Headers) != 2 {
		t.Fatalf("expected both duplicates retained, got %d headers", len(f.Headers))
	}
	if f.Headers[0].Name != "destination" {
		t.Fatalf("header name not lower-cased: %q", f.Headers[0].Name)
	}
}

func TestOverrideHeaderInPlace(t *testing.T) {
	f := frame.New("SEND", 4)
	f.AppendHeader("a", "1")
	f.AppendHeader("b", "2")
	f.AppendHeader("a", "3")

	f.OverrideHeader("a", "9")
	if len(f.Headers) != 3 {
		t.Fatalf("override must not change header count when a match exists, got %d", len(f.Headers))
	}
	// last "a" (index 2) is overridden in place, not the first.
	if f.Headers[2].Value != "9" {
		t.Fatalf("expected last matching header overridden, got %+v", f.Headers)
	}
	if f.Headers[0].Value != "1" {
		t.Fatalf("first occurrence must be untouched, got %+v", f.Headers[0])
	}

	f.OverrideHeader("c", "new")
	if len(f.Headers) != 4 {
		t.Fatalf("override must append when no match exists, got %d headers", len(f.Headers))
	}
}

func TestRemoveLastAndAllHeadersOfType(t *testing.T) {
	f := frame.New("SEND", 4)
	f.AppendHeader("a", "1")
	f.AppendHeader("a", "2")
	f.AppendHeader("a", "3")

	prev := f.RemoveLastHeaderOfType("a")
	if prev != "3" {
		t.Fatalf("RemoveLastHeaderOfType should return the removed value, got %q", prev)
	}
	if len(f.Headers) != 2 {
		t.Fatalf("expected 2 headers remaining, got %d", len(f.Headers))
	}

	if prev := f.RemoveLastHeaderOfType("nope"); prev != "" {
		t.Fatalf("removing an absent header must return empty string, got %q", prev)
	}

	f.RemoveAllHeadersOfType("a")
	if len(f.Headers) != 0 {
		t.Fatalf("expected all 'a' headers removed, got %d remaining", len(f.Headers))
	}
}

func TestContentTypeRoundTrip(t *testing.T) {
	f := frame.New("SEND", 1)
	f.AppendContentType("text/json", frame.EncodingUTF8)
	val := f.GetHeaderValue("content-type")
	if val != "text/json;charset=utf-8" {
		t.Fatalf("unexpected content-type value: %q", val)
	}
	mime, enc := frame.ParseContentType(val)
	if mime != "text/json" || enc != frame.EncodingUTF8 {
		t.Fatalf("ParseContentType round-trip failed: mime=%q enc=%q", mime, enc)
	}
}

func TestContentTypeUnknownLabelPassesThrough(t *testing.T) {
	mime, enc := frame.ParseContentType("text/plain;charset=shift-jis")
	if mime != "text/plain" || enc != "shift-jis" {
		t.Fatalf("unknown charset label should pass through unchanged, got %q", enc)
	}
}

func TestContentLength(t *testing.T) {
	f := frame.NewWithBody("SEND", 1, []byte("hello"))
	f.AppendContentLength()
	if f.GetHeaderValue("content-length") != "5" {
		t.Fatalf("expected content-length 5, got %q", f.GetHeaderValue("content-length"))
	}

	f.Body = []byte("hello world")
	f.OverrideContentLength()
	if f.GetHeaderValue("content-length") != strconv.Itoa(len("hello world")) {
		t.Fatalf("override content-length did not reflect new body length")
	}
}

func TestWireSizeMatchesSerializedLength(t *testing.T) {
	f := frame.New("SEND", 2)
	f.AppendHeader("destination", "/queue/a")
	f.AppendHeader("k:ey", "v\nal\\ue") // forces escaping in both name and value
	f.Body = []byte("payload")

	buf := f.ToBuffer()
	if len(buf) != f.WireSize() {
		t.Fatalf("WireSize() = %d, len(ToBuffer()) = %d", f.WireSize(), len(buf))
	}
}

func TestHeaderEscapeRoundTrip(t *testing.T) {
	f := frame.New("SEND", 1)
	f.AppendHeader("k:ey", "v\nal\\ue")
	buf := f.ToBuffer()

	const want = "k\\cey:v\\nal\\\\ue\n"
	got := string(buf[len("SEND\n"):])
	if got[:len(want)] != want {
		t.Fatalf("escaped header line = %q, want prefix %q", got, want)
	}

	// and the reverse direction
	if frame.Unescape("v\\nal\\\\ue") != "v\nal\\ue" {
		t.Fatalf("Unescape did not invert escapeInto")
	}
}

func TestUnescapeUnknownEscapeDropsBoth(t *testing.T) {
	// "\z" is not a recognized escape: both bytes are consumed silently.
	got := frame.Unescape("a\\zb")
	if got != "ab" {
		t.Fatalf("unknown escape should drop both bytes, got %q", got)
	}
}

func TestEmptyBodyFrame(t *testing.T) {
	f := frame.New("RECEIPT", 1)
	f.AppendHeader("receipt-id", "77")
	buf := f.ToBuffer()
	// blank header-terminator line immediately followed by the null byte.
	if buf[len(buf)-1] != 0 {
		t.Fatalf("expected terminating null byte")
	}
	if buf[len(buf)-2] != '\n' {
		t.Fatalf("expected blank line directly before the null terminator for an empty body")
	}
}

func TestJSONBodyHelper(t *testing.T) {
	body, ct, err := frame.NewJSONBody(map[string]string{"hello": "world"}, frame.EncodingUTF8)
	if err != nil {
		t.Fatalf("NewJSONBody: %v", err)
	}
	if ct != "application/json;charset=utf-8" {
		t.Fatalf("unexpected content-type: %q", ct)
	}
	if string(body) != `{"hello":"world"}` {
		t.Fatalf("unexpected json body: %s", body)
	}
}

func TestBase64Body(t *testing.T) {
	src := []byte("hello")
	dst := frame.NewBase64Body(src)
	if string(dst) != "aGVsbG8=" {
		t.Fatalf("unexpected base64 body: %s", dst)
	}
}

func TestCopyBodyIsIndependent(t *testing.T) {
	src := []byte("hello world")
	dst := frame.CopyBody(src, 6, 5)
	if string(dst) != "world" {
		t.Fatalf("unexpected copy: %s", dst)
	}
	src[6] = 'W'
	if dst[0] != 'w' {
		t.Fatalf("CopyBody must not alias the source buffer")
	}
}
