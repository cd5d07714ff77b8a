// Package tours serves the WanderWise tour listing: a substring search over
// the tours table, rendered as the "Explore Our Tours" page or as JSON.
package tours
