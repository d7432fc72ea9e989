// Package query validates audit queries and parses them from URL parameters.
package query
