package usecase

import (
	"fmt"
	"strings"

	"github.com/tournify/match-resolution/internal/domain/participant"
)

// minParticipants rejects degenerate quorums: with one participant the
// threshold floor(1*0.7) clamps to 1 and any identifier in that lone
// history would trivially win.
const minParticipants = 2

func normalizeIdentities(raw []participant.Identity) ([]participant.Identity, error) {
	if len(raw) < minParticipants {
		return nil, fmt.Errorf("%w: at least %d participants are required, got %d", ErrInvalidInput, minParticipants, len(raw))
	}

	out := make([]participant.Identity, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, item := range raw {
		identity := participant.Identity{
			Name:     strings.TrimSpace(item.Name),
			Tag:      strings.TrimSpace(item.Tag),
			Region:   strings.TrimSpace(item.Region),
			Platform: strings.TrimSpace(item.Platform),
		}
		if err := identity.Validate(); err != nil {
			return nil, fmt.Errorf("%w: players[%d]: %v", ErrInvalidInput, i, err)
		}

		// A repeated identity is idempotent: it is fetched and counted
		// once, keeping its first position in the request order.
		key := identity.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, identity)
	}
	if len(out) < minParticipants {
		return nil, fmt.Errorf("%w: at least %d distinct participants are required, got %d", ErrInvalidInput, minParticipants, len(out))
	}

	return out, nil
}
