package entity

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/lineage/pkg/directory"
)

// Entity types, as they appear in lineage records and search indexes.
const (
	TypeTable     = "table"
	TypeTopic     = "topic"
	TypeDashboard = "dashboard"
	TypePipeline  = "pipeline"
)

const tierPrefix = "Tier.Tier"

// Placeholder shown for values that are not available.
const Placeholder = "--"

// UsageSummary is the weekly usage of an entity.
type UsageSummary struct {
	PercentileRank float64 `json:"percentileRank"`
	Count          int64   `json:"count"`
}

// ProfilePoint is one profiler run.
type ProfilePoint struct {
	Date        time.Time `json:"profileDate"`
	RowCount    int64     `json:"rowCount"`
	ColumnCount int       `json:"columnCount,omitempty"`
}

// Details is what the catalog knows about one entity.
type Details struct {
	ID                 string         `json:"id"`
	FullyQualifiedName string         `json:"fullyQualifiedName"`
	Type               string         `json:"type"`
	OwnerID            string         `json:"owner,omitempty"`
	Tags               []string       `json:"tags,omitempty"`
	Usage              *UsageSummary  `json:"usageSummary,omitempty"`
	Profile            []ProfilePoint `json:"tableProfile,omitempty"`
}

// =============================================================================
// Tags
// =============================================================================

func isTier(tag string) bool {
	if !strings.HasPrefix(tag, tierPrefix) {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(tag[len(tierPrefix):]))
	return err == nil
}

// Tier returns the first "Tier.TierN" tag, or "" if there is none.
func Tier(tags []string) string {
	for _, t := range tags {
		if isTier(t) {
			return t
		}
	}
	return ""
}

// TierLabel returns the part after the "Tier." classification prefix.
func TierLabel(tier string) string {
	_, label, ok := strings.Cut(tier, ".")
	if !ok {
		return ""
	}
	return label
}

// TagsWithoutTier returns tags with every tier tag removed.
func TagsWithoutTier(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !isTier(t) {
			out = append(out, t)
		}
	}
	return out
}

// =============================================================================
// Usage
// =============================================================================

// UsageSeverity buckets a percentile: above 75 is High, 25 through 75 is
// Medium, anything else is Low.
func UsageSeverity(value float64) string {
	switch {
	case value > 75:
		return "High"
	case value >= 25:
		return "Medium"
	default:
		return "Low"
	}
}

// UsagePercentile formats a percentile rank as "High - 95th pctile". The rank
// is rounded to one decimal before bucketing and to a whole number for the
// ordinal.
func UsagePercentile(pctRank float64) string {
	pct := math.Round(pctRank*10) / 10
	return fmt.Sprintf("%s - %s pctile", UsageSeverity(pct), humanize.Ordinal(int(math.Round(pct))))
}

// =============================================================================
// Links and icons
// =============================================================================

func normalizeType(t string) string {
	t = strings.ToLower(t)
	t = strings.TrimSuffix(t, "_search_index")
	return t
}

// Link returns the catalog page path for an entity. Unknown types link to the
// dataset page.
func Link(entityType, fqn string) string {
	switch normalizeType(entityType) {
	case TypeTopic:
		return "/topic/" + fqn
	case TypeDashboard:
		return "/dashboard/" + fqn
	case TypePipeline:
		return "/pipeline/" + fqn
	default:
		return "/dataset/" + fqn
	}
}

// TeamLink returns the team page path.
func TeamLink(name string) string { return "/teams/" + name }

// Icon returns the icon name for an entity type.
func Icon(entityType string) string {
	switch t := normalizeType(entityType); t {
	case TypeTopic, TypeDashboard, TypePipeline:
		return t
	default:
		return TypeTable
	}
}

// =============================================================================
// Access
// =============================================================================

// CanEdit reports whether currentUser may manage an entity owned by ownerID.
// Unowned entities are editable by anyone. A user owner must be the viewer; a
// team owner must count the viewer as a member. Owners the directory cannot
// resolve are treated as teams.
func CanEdit(dir directory.Directory, ownerID, currentUser string) bool {
	if ownerID == "" {
		return true
	}
	if owner, ok := directory.ResolveOwner(dir, ownerID); ok && owner.Type == directory.OwnerUser {
		return owner.ID == currentUser
	}
	if dir == nil {
		return false
	}
	return slices.ContainsFunc(dir.TeamsOf(currentUser), func(t directory.Team) bool {
		return t.ID == ownerID
	})
}
