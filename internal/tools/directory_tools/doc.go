// Package directory_tools provides the people-directory lookup capability.
//
// The single tool resolves a display-name fragment to email addresses via a
// case-insensitive prefix search against the Microsoft Graph directory.
// Directory failures degrade to an empty result by policy: the model sees
// "no matches" and can tell the user, while the failure itself is logged.
package directory_tools
