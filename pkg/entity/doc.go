// Package entity builds the detail panel shown next to a lineage graph.
//
// When a node is selected, the viewer shows a short summary of the entity it
// stands for: owner, tier, usage, query volume, column count and a row-count
// trend. [Panel] turns an entity's [Details] into ordered [InfoRow] values.
// Each row is either plain text, a link or a chart series. The CLI prints the
// rows and the HTTP API returns them as JSON.
//
// The helpers behind the panel are exported for reuse:
//
//   - [Tier] and [TagsWithoutTier] split the "Tier.TierN" tag from the rest
//   - [UsageSeverity] and [UsagePercentile] describe a weekly percentile rank
//   - [Link] and [Icon] map an entity type to its page path and icon name
//   - [CanEdit] decides whether a viewer may manage the entity
package entity
