package draft

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RunJanitor prunes drafts untouched for longer than ttl every interval until
// ctx is cancelled.
func (s *Store) RunJanitor(ctx context.Context, ttl, interval time.Duration, logger zerolog.Logger) {
	logger = logger.With().Str("component", "draft-janitor").Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Prune(s.now().Add(-ttl)); removed > 0 {
				logger.Info().Int("removed", removed).Int("remaining", s.Len()).Msg("pruned idle drafts")
			}
		}
	}
}
