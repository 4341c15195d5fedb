// Package server hosts the local HTTP callback used by `aniq auth login`.
//
// The AniList OAuth2 authorization-code flow redirects the browser back to a
// loopback address after the user approves access. [OAuthHandler] validates
// the state parameter, exchanges the code for a token, and delivers the
// result to the waiting CLI command. [WaitForCallback] runs the throwaway
// server for the duration of one login.
package server
