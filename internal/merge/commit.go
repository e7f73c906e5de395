package merge

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Commit lands a staged kit on the tree. Dry-run commits are captured
// in the tree's overlay so later kits in the same run observe them.
// Real commits write each file atomically; the writes are independent
// paths, so they run in parallel.
func Commit(ctx context.Context, tree *WorkingTree, staged *Staged) error {
	if tree.dryRun {
		for _, w := range staged.Writes {
			tree.overlay[w.RelPath] = w.Content
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range staged.Writes {
		w := w
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := tree.fs.AtomicWrite(tree.Abs(w.RelPath), w.Content, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", w.RelPath, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to commit kit %s: %w", staged.Kit, err)
	}
	return nil
}
