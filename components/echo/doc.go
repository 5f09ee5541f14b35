// Package echo provides a small net/http backend that reflects form
// submissions back to the caller. GET requests echo their query string and
// POST requests echo their fields and uploaded files, which makes it a handy
// target for exercising fetch-data forms end to end.
//
// An optional validator turns the handler into a failure source: when it
// reports field errors the response is 422 with an
// {"errors": {"field": {"messages": [...]}}} body. Replies are JSON unless the
// client asks for application/msgpack first in its Accept header.
package echo
