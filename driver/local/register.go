package local

import "github.com/gobeaver/ingestguard"

func init() {
	ingestguard.RegisterDriver("local", func(cfg *ingestguard.Config) (ingestguard.FileSystem, error) {
		return New(cfg.LocalBasePath)
	})
}
