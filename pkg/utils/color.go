package utils

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/myquest/pkg/errors"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NormalizeColor validates a #RRGGBB colour and returns it upper-cased.
// A missing leading # is added.
func NormalizeColor(color string) (string, error) {
	c := strings.TrimSpace(color)
	if c != "" && !strings.HasPrefix(c, "#") {
		c = "#" + c
	}
	if !hexColor.MatchString(c) {
		return "", errors.Newf(errors.ErrInvalidInput, "invalid color %q, want #RRGGBB", color).
			WithDetail("color", color)
	}
	return strings.ToUpper(c), nil
}
