package memory

import "github.com/gobeaver/ingestguard"

func init() {
	ingestguard.RegisterDriver("memory", func(cfg *ingestguard.Config) (ingestguard.FileSystem, error) {
		return New(), nil
	})
}
