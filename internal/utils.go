package internal

import "bytes"

var fence = []byte("```")

// StripFence returns the body of the first markdown code fence in bs. The
// language tag after the opening fence is dropped. Input without a fence is
// returned trimmed.
func StripFence(bs []byte) []byte {
	start := bytes.Index(bs, fence)
	if start == -1 {
		return bytes.TrimSpace(bs)
	}
	body := bs[start+len(fence):]
	if nl := bytes.IndexByte(body, '\n'); nl != -1 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	if end := bytes.LastIndex(body, fence); end != -1 {
		body = body[:end]
	}
	return bytes.TrimSpace(body)
}
