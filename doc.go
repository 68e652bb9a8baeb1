// Package ingestguard guards the boundary where untrusted files and rich
// text enter an application: uploaded scan reports, screenshots and
// free-text fields.
//
// Nothing is stored on the strength of a filename or Content-Type header.
// A [Store] checks every upload, in order, against the size limit, a
// deny-list of dangerous names, the extension allow-list and the file's
// magic bytes (see package filevalidator), then applies per-type content
// checks: SVG is sanitized and XML reports must be well formed and free
// of DTDs. Accepted content is written under a generated key, never the
// uploader's name.
//
// # Storage Backends
//
// The store writes through a [FileSystem]. Drivers register themselves
// with [RegisterDriver] when imported:
//
//   - In-memory (github.com/gobeaver/ingestguard/driver/memory)
//   - Local filesystem (github.com/gobeaver/ingestguard/driver/local)
//   - Amazon S3 (github.com/gobeaver/ingestguard/driver/s3)
//
// # Basic Usage
//
//	import _ "github.com/gobeaver/ingestguard/driver/local"
//
//	store, err := ingestguard.New(ingestguard.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	upload, err := store.Put(ctx, header.Filename, body, nil)
//	var ue *ingestguard.UploadError
//	if errors.As(err, &ue) {
//	    http.Error(w, ue.Message, http.StatusBadRequest)
//	    return
//	}
//
// Rich-text fields go through [Store.SanitizeField] or
// [Store.RenderField] before they are persisted.
//
// # Configuration
//
// Configuration is read from the environment with the BEAVER_INGESTGUARD_
// prefix, for example BEAVER_INGESTGUARD_DRIVER=s3. Use [WithPrefix] for a
// different prefix:
//
//	store, err := ingestguard.WithPrefix("SCANNER_").New()
//
// # Logging
//
// Rejections are logged at warn level and stored uploads at info level
// through log/slog. Pass [WithLogger] to use an application logger.
package ingestguard
