// Package catalog talks to the public app-catalog lookup endpoint.
//
// Different apps are published in different storefronts, so a lookup walks
// a fixed priority list of region codes (home region first) and stops at
// the first storefront that knows the app. The client underneath retries
// transient statuses on the idempotent GET and rate-limits outbound calls.
package catalog
