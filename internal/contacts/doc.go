// Package contacts provides a client for a user's Google contacts and
// contact groups.
//
// It adapts the People API v1 to the index-paged model the web UI works
// with. Contacts and groups are addressed by their resource name, which
// this package calls the URL ("people/c123", "contactGroups/friends").
// Listing operations collect the full filtered result set and return one
// window of it as a paging.IndexPage.
package contacts
