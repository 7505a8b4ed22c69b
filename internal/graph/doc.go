// Package graph provides the Microsoft Graph client used by mailclerk.
//
// It covers exactly two Graph capabilities: searching directory users by
// display-name prefix, and sending mail on behalf of the configured
// application user. Authentication uses the client-credential flow through
// azidentity; requests go over plain REST with a bearer token rather than
// the generated Graph SDK, keeping the dependency surface small.
package graph
