// Package paging holds the two page shapes returned by list queries.
//
// Contacts and contact groups are paged by a 1-based start index and a page
// size. Google+ feeds and Tasks are paged by an opaque continuation token that
// the caller round-trips on the next request. The two are separate types and
// are not interchangeable.
package paging
