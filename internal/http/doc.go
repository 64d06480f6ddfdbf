// Package http serves the wiki over net/http.
//
// Routes:
//   - Pages: /, /index/, /{url}/, /create/, /edit/{url}/, /preview/,
//     /move/{url}/, /delete/{url}/
//   - Tags and search: /tags/, /tag/{name}/, /search/
//   - Accounts: /user/login/, /user/logout/, /user/create/, /user/delete,
//     /user/delete/{name}, /user/delete-by-role
//
// Page routes require a login when the wiki is private. Host applications
// can mount the routes on their own mux with Register or use Handler, which
// adds request IDs, access logging and panic recovery.
package http
