package docker

import (
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/melih/lighthouse-deck/internal/core/domain"
)

// Normalize converts an engine listing into domain records, keeping the
// engine's order. It never fails: missing fields become zero values.
func Normalize(raw []types.Container) []domain.Container {
	result := make([]domain.Container, 0, len(raw))
	for _, c := range raw {
		result = append(result, NormalizeOne(c))
	}
	return result
}

// NormalizeOne converts a single engine record.
func NormalizeOne(c types.Container) domain.Container {
	return domain.Container{
		ID:      c.ID,
		ShortID: domain.ShortID(c.ID),
		Name:    displayName(c.Names),
		Status:  domain.ParseStatus(c.State),
	}
}

// displayName strips the engine's leading "/" from each alias and joins
// them with ", " in the reported order.
func displayName(names []string) string {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		cleaned = append(cleaned, strings.TrimPrefix(n, "/"))
	}
	return strings.Join(cleaned, ", ")
}
