// Package wire implements the request encoder (C6) and the response
// status-line/header parsing glue around the external header-parser
// collaborator (C3), grounded on the teacher's writeHeader/Read pair in
// internal/transport/http1.go (now relocated and rewritten here; see
// DESIGN.md).
package wire

import (
	"bufio"
	"io"
	"strconv"

	"github.com/epogrebnyak/httpclient/internal/model"
	"github.com/epogrebnyak/httpclient/internal/urlutil"
)

// WriteRequest serializes method, request-target, headers and body into
// w exactly per spec 4.4/6: auto headers (Host, Content-Length,
// Accept-Encoding) in that order before user headers, CRLF-terminated
// lines, body bytes immediately following the blank line. It does not
// deduplicate user-supplied Host/Content-Length/Accept-Encoding headers
// against the generated ones — that is a caller precondition, preserved
// from the source per spec 4.4/9.
func WriteRequest(w io.Writer, req *model.Request) error {
	bw := bufio.NewWriterSize(w, 4096)

	method := req.Method
	if method == "" {
		method = "GET"
	}
	if _, err := bw.WriteString(method); err != nil {
		return err
	}
	if err := bw.WriteByte(' '); err != nil {
		return err
	}
	if _, err := bw.WriteString(requestTarget(req)); err != nil {
		return err
	}
	if _, err := bw.WriteString(" HTTP/1.1\r\n"); err != nil {
		return err
	}

	if err := writeHostHeader(bw, req); err != nil {
		return err
	}

	n, known := req.Body.Len()
	if !known {
		n = 0
	}
	if _, err := bw.WriteString("Content-Length: "); err != nil {
		return err
	}
	if _, err := bw.WriteString(strconv.FormatInt(n, 10)); err != nil {
		return err
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}

	if _, err := bw.WriteString("Accept-Encoding: gzip\r\n"); err != nil {
		return err
	}

	for _, f := range req.RequestHeaders {
		if _, err := bw.WriteString(f.Name); err != nil {
			return err
		}
		if _, err := bw.WriteString(": "); err != nil {
			return err
		}
		if _, err := bw.WriteString(f.Value); err != nil {
			return err
		}
		if _, err := bw.WriteString("\r\n"); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	body, err := req.Body.Open()
	if err != nil {
		return err
	}
	if body == nil {
		return nil
	}
	_, err = io.Copy(w, body)
	return err
}

// requestTarget renders path+query exactly as spec 4.4 defines it: path
// prefixed with "/" if it isn't already, then "?"+encoded query when the
// query string is non-empty.
func requestTarget(req *model.Request) string {
	path := req.Path
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	target := path
	if q := urlutil.EncodeQuery(req.QueryString); q != "" {
		target += "?" + q
	}
	return target
}

func writeHostHeader(bw *bufio.Writer, req *model.Request) error {
	if _, err := bw.WriteString("Host: "); err != nil {
		return err
	}
	if _, err := bw.WriteString(req.Host); err != nil {
		return err
	}
	isDefaultPort := (!req.Secure && req.Port == 80) || (req.Secure && req.Port == 443)
	if !isDefaultPort {
		if _, err := bw.WriteString(":"); err != nil {
			return err
		}
		if _, err := bw.WriteString(strconv.Itoa(req.Port)); err != nil {
			return err
		}
	}
	_, err := bw.WriteString("\r\n")
	return err
}
