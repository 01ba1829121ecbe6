package cli

import (
	"strings"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/google/uuid"
)

// shortIDLen is how many characters of an ID tables show
const shortIDLen = 8

func shortID(id uuid.UUID) string {
	return id.String()[:shortIDLen]
}

// matchID resolves a full ID or a unique prefix of one of the known IDs
func matchID(kind, input string, known []uuid.UUID) (uuid.UUID, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return uuid.Nil, errors.Newf(errors.ErrInvalidInput, "%s ID must not be empty", kind)
	}
	if id, err := uuid.Parse(input); err == nil {
		return id, nil
	}

	var matches []uuid.UUID
	for _, id := range known {
		if strings.HasPrefix(id.String(), input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, errors.Newf(errors.ErrNotFound, "no %s matches %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, errors.Newf(errors.ErrInvalidInput, "%q matches %d %ss, use more characters", input, len(matches), kind).
			WithDetail("prefix", input)
	}
}
