package publisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/kayz/muse/internal/logger"
)

// Multi fans a post out to several platforms. The first publisher is the
// primary: its failure fails the publish. Mirrors only log their errors, a
// broken Telegram channel must not block the X post.
type Multi struct {
	publishers []Publisher
}

// NewMulti builds a fan-out publisher. At least one publisher is required.
func NewMulti(primary Publisher, mirrors ...Publisher) *Multi {
	return &Multi{publishers: append([]Publisher{primary}, mirrors...)}
}

// Name lists the wrapped publisher names.
func (m *Multi) Name() string {
	names := make([]string, len(m.publishers))
	for i, p := range m.publishers {
		names[i] = p.Name()
	}
	return strings.Join(names, "+")
}

// Publish sends to the primary first, then mirrors best-effort.
func (m *Multi) Publish(ctx context.Context, post Post) error {
	if len(m.publishers) == 0 {
		return fmt.Errorf("no publishers configured")
	}
	if err := m.publishers[0].Publish(ctx, post); err != nil {
		return err
	}
	for _, p := range m.publishers[1:] {
		if err := p.Publish(ctx, post); err != nil {
			logger.Warn("mirror %s failed: %v", p.Name(), err)
		}
	}
	return nil
}
