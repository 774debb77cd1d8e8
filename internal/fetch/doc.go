// Package fetch performs the outbound read for a source and turns the
// response body into one float64.
//
// Three body formats are understood:
//   - json: the value is selected with a JSONPath expression (default
//     "$.value"); a body that is a bare JSON number is accepted as is
//   - text: the trimmed body is parsed as a number
//   - prometheus: text exposition format; the named metric family's series
//     are summed
//
// Failures are classified as ErrFetch (transport error or non-2xx status)
// or ErrMalformedResponse (the body holds no usable number). Nothing is
// retried.
package fetch
