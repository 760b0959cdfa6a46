// Package star builds the star schema: four dimension tables keyed by
// dense, first-seen surrogate identifiers, and the central fact table that
// left-joins every source row against them. Missing dimension columns and
// unmatched join keys degrade into report counters, never into dropped
// rows.
package star
