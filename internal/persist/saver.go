package persist

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/edirooss/leaderboard/internal/board"
)

// BoardSource supplies the current set of boards to save. *registry.Registry
// satisfies this; the interface exists here (rather than importing registry
// directly) so persist stays a leaf package that registry can depend on
// without a cycle.
type BoardSource interface {
	Boards() map[string]*board.Board
}

// Saver periodically writes every board to disk; SaveAll runs one pass on
// demand (the server calls it once more on shutdown after Stop). Concurrent
// saves of different boards run
// in parallel; a single saveMu serializes whole-fleet save passes so a
// scheduled tick and a manual "save now" request never race each other.
type Saver struct {
	log      *zap.Logger
	src      BoardSource
	savesDir string

	saveMu sync.Mutex
	cron   *cron.Cron
}

// New returns a Saver that writes board files under savesDir.
func New(src BoardSource, savesDir string, log *zap.Logger) *Saver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Saver{log: log.Named("saver"), src: src, savesDir: savesDir}
}

// Start schedules a save pass every interval using a cron expression of
// the form "@every <interval>". Call Stop to end the schedule.
func (s *Saver) Start(interval time.Duration) {
	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", interval)
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.SaveAll(context.Background()); err != nil {
			s.log.Error("scheduled save failed", zap.Error(err))
		}
	})
	if err != nil {
		s.log.Error("failed to schedule save loop", zap.Error(err))
		return
	}
	s.cron.Start()
}

// Stop ends the schedule. It does not itself perform a final save — call
// SaveAll explicitly during shutdown.
func (s *Saver) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

// SaveAll writes every registered board to disk concurrently, returning
// the first error encountered (if any) after all saves complete.
func (s *Saver) SaveAll(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	boards := s.src.Boards()
	s.log.Info("starting board save pass", zap.Int("boards", len(boards)))

	g, _ := errgroup.WithContext(ctx)
	for name, b := range boards {
		name, b := name, b
		g.Go(func() error {
			path := filepath.Join(s.savesDir, name+".board")
			if err := SaveBoard(b, path); err != nil {
				return fmt.Errorf("save board %q: %w", name, err)
			}
			s.log.Debug("saved board", zap.String("board", name))
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		s.log.Error("board save pass finished with errors", zap.Error(err))
	} else {
		s.log.Info("board save pass complete")
	}
	return err
}
