// Package web serves the quickstart UI: a chi router whose handlers bind
// the submitted form, call the signed-in user's Google clients and either
// redirect or render an embedded html/template view.
//
// Every data route goes through one error-mapping layer. An expired
// authorization redirects to /signout, a missing session redirects to
// /signin and any other failure is logged and answered with 500.
package web
