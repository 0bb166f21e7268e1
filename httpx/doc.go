// Package httpx models HTTP messages as immutable values.
//
// Highlights
//   - URI: parses and rebuilds "scheme://userinfo@host:port/path?query#fragment";
//     With* methods return modified copies and validate their input.
//   - Message: protocol version, ordered case-insensitive headers and a
//     body Stream. Request adds method, URI and request-target.
//   - Stream: single owner of an I/O handle (file, memory buffer or any
//     io.Closer). Unsupported operations return ErrUnavailable instead of
//     failing; Detach hands the handle back to the caller.
//   - Transport: Client passes requests to a Transport; WireTransport
//     writes HTTP/1.1 to a caller-supplied connection.
//
// Invalid input to a constructor or With* method yields an error wrapping
// ErrInvalidArgument, and the receiver is left as it was.
//
// Quick start:
//
//	req, err := httpx.NewRequest("post", "https://api.example.com/items?x=1", nil, httpx.HeaderMap{
//	    "Content-Type": httpx.Single("application/json"),
//	})
//	if err != nil { log.Fatal(err) }
//	req, _ = req.WithAddedHeader("Accept", httpx.Multiple("application/json", "text/plain"))
//	fmt.Println(req.Method(), req.RequestTarget()) // POST /items?x=1
package httpx
