// Package api exposes the activity service over HTTP.
//
// Routes under /api/activity require a bearer token whose user.id claim is a
// GitHub id known to the users repository. Successful responses carry
// "success": true next to the payload; failures use the JSON error envelope
// of core/response.
package api
