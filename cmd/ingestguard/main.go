// Command ingestguard checks files and rich text from the command line
// with the same rules the upload store applies.
//
//	ingestguard validate [-allow png,pdf] [-image] FILE...
//	ingestguard sanitize < in.html
//	ingestguard markdown [-raw] < in.md
//	ingestguard plain < in.md
//	ingestguard tomd < in.html
//	ingestguard svg < in.svg
//	ingestguard store FILE...
//
// The exit status is 1 when any file is rejected and 2 on usage errors.
package main

import (
	"fmt"
	"io"
	"os"
)

const usage = `Usage: ingestguard <command> [flags] [args]

Commands:
  validate   verify files against their extensions
  sanitize   sanitize HTML from stdin
  markdown   render Markdown from stdin to sanitized HTML
  plain      strip all markup from stdin
  tomd       convert HTML from stdin to Markdown
  svg        sanitize an SVG document from stdin
  store      validate and store files through the configured driver
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "validate":
		return runValidate(rest, stdout, stderr)
	case "sanitize", "markdown", "plain", "tomd", "svg":
		return runFilter(cmd, rest, stdin, stdout, stderr)
	case "store":
		return runStore(rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
}
