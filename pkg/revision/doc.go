// Package revision defines the identifier and record types shared by every
// stage of revgraph: log readers produce [Revision] values, the lane layout
// consumes their [ID] and parent lists, and renderers display the rest.
//
// An [ID] is an immutable, content-compared string. Real git object ids are
// 40 lower-case hex characters ([IsFullSHA1]), but nothing outside the log
// readers depends on that shape, so tests and imported histories may use
// short symbolic names.
package revision
