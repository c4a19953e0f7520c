package export

import (
	"log/slog"
	"sync"

	"dubline/internal/fileutil"
	"dubline/internal/logging"
)

// artifacts tracks the temporary files owned by one job.
type artifacts struct {
	mu     sync.Mutex
	paths  []string
	once   sync.Once
	logger *slog.Logger
}

func newArtifacts(logger *slog.Logger) *artifacts {
	return &artifacts{logger: logger}
}

func (a *artifacts) add(path string) string {
	if path == "" {
		return path
	}
	a.mu.Lock()
	a.paths = append(a.paths, path)
	a.mu.Unlock()
	return path
}

// cleanup removes every registered path. Only the first call does anything;
// removal errors are logged at debug and otherwise ignored.
func (a *artifacts) cleanup() {
	a.once.Do(func() {
		a.mu.Lock()
		paths := a.paths
		a.paths = nil
		a.mu.Unlock()
		for _, path := range paths {
			if err := fileutil.RemoveQuietly(path); err != nil {
				a.logger.Debug("temp artifact cleanup failed",
					logging.String("path", path),
					logging.Error(err),
				)
			}
		}
	})
}
