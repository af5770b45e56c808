// Package program owns compiled effect programs and the layer list.
//
// A [Cache] maps effect ids to compiled program handles. Each id is
// compiled at most once while it succeeds; failed compiles are logged and
// retried on the next request. The cache also tracks the host's layer
// requests and derives the ordered list of active layers from them.
package program
