// Package filevalidator verifies that untrusted uploads are what their
// filename claims, using magic-byte signatures instead of the client's
// extension or Content-Type header.
//
// # Signature table
//
// Supported types are registered once at package init in a fixed order:
// png, jpg, jpeg, gif, webp, svg, pdf, xml, nessus, txt. Lookup by content
// is first-registered-wins, so an XML declaration is detected as svg before
// xml. WebP additionally requires "WEBP" at offset 8 so that other RIFF
// containers (WAV, AVI) are not accepted. txt has no signature; it is
// accepted unless its first kilobyte contains a NUL byte.
//
// Extensions that are not in the table are always rejected.
//
// # Quick Start
//
//	res := filevalidator.ValidateUpload(content, "photo.PNG",
//	    filevalidator.NewExtensions("png", "jpg"))
//	if !res.Valid {
//	    switch res.Reason {
//	    case filevalidator.ReasonNoExtension,
//	        filevalidator.ReasonExtensionNotAllowed,
//	        filevalidator.ReasonContentMismatch:
//	        return badRequest(res.Message)
//	    }
//	}
//
// Image-only paths add a second check, which also scans SVG text for
// script, event handlers and foreignObject:
//
//	ok, reason := filevalidator.IsSafeImage(content, "svg")
//
// # Failure semantics
//
// Nothing in this package panics or returns an error on malformed input;
// rejections are values. The only panic is a corrupt signature table
// entry at init.
//
// All functions are safe for concurrent use. The package does not log.
package filevalidator
