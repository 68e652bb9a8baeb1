package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gobeaver/ingestguard"
	_ "github.com/gobeaver/ingestguard/driver/local"
	_ "github.com/gobeaver/ingestguard/driver/memory"
	_ "github.com/gobeaver/ingestguard/driver/s3"
	"github.com/gobeaver/ingestguard/filevalidator"
	"github.com/gobeaver/ingestguard/markup"
)

// maxFilterInput caps what the stdin filters read.
const maxFilterInput = 10 << 20

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	allow := fs.String("allow", filevalidator.DefaultUploadExtensions().String(), "Comma-separated allowed extensions")
	image := fs.Bool("image", false, "Apply the image checks (SVG active content)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "validate: at least one file is required")
		return 2
	}

	allowed := filevalidator.ParseExtensions(*allow)
	var v filevalidator.Validator = filevalidator.New(allowed)
	if *image {
		v = filevalidator.NewImageValidator(allowed)
	}

	status := 0
	for _, path := range fs.Args() {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			status = 1
			continue
		}
		res := v.ValidateUpload(content, filepath.Base(path))
		fmt.Fprintf(stdout, "%s: %s\n", path, res.Summary())
		if !res.Valid {
			status = 1
		}
	}
	return status
}

func runFilter(cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	raw := false
	if cmd == "markdown" {
		fs.BoolVar(&raw, "raw", false, "Skip sanitization (trusted input only)")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	input, err := io.ReadAll(io.LimitReader(stdin, maxFilterInput))
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return 1
	}

	var out string
	switch cmd {
	case "sanitize":
		out = markup.SanitizeHTML(string(input))
	case "markdown":
		var opts []markup.Option
		if raw {
			opts = append(opts, markup.WithoutSanitize())
		}
		out = markup.ToHTML(string(input), opts...)
	case "plain":
		out = markup.ToPlain(string(input))
	case "tomd":
		out = markup.HTMLToMarkdown(string(input))
	case "svg":
		out = string(markup.SanitizeSVG(input))
	}

	fmt.Fprintln(stdout, out)
	return 0
}

func runStore(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("store", flag.ContinueOnError)
	fs.SetOutput(stderr)
	image := fs.Bool("image", false, "Store as images (screenshot rules)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "store: at least one file is required")
		return 2
	}

	cfg, err := ingestguard.GetConfig()
	if err != nil {
		fmt.Fprintf(stderr, "store: %v\n", err)
		return 1
	}
	store, err := ingestguard.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "store: %v\n", err)
		return 1
	}

	ctx := context.Background()
	status := 0
	for _, path := range fs.Args() {
		status |= storeFile(ctx, store, path, *image, stdout, stderr)
	}
	return status
}

func storeFile(ctx context.Context, store *ingestguard.Store, path string, image bool, stdout, stderr io.Writer) int {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", path, err)
		return 1
	}

	var upload *ingestguard.StoredUpload
	if image {
		upload, err = store.PutImage(ctx, path, content)
	} else {
		upload, err = store.Put(ctx, path, content, nil)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", path, err)
		return 1
	}

	fmt.Fprintf(stdout, "%s: stored %s (%s, %d bytes, sha256 %s)\n",
		path, upload.URL, upload.MIME, upload.Size, upload.Checksum)
	return 0
}
