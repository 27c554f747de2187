// Package httputil fetches remote inputs.
//
// Features and records can be read from http(s) URLs as well as files.
// [Fetcher] downloads them with [Retry], treating network errors, 429 and
// 5xx responses as transient:
//
//	data, err := httputil.Fetch(ctx, "https://example.com/states.geojson")
//
// Other statuses fail immediately with an INVALID_INPUT error.
package httputil
