package google

// DefaultOAuthScopes are the Google OAuth scopes requested at sign-in.
//
// The scopes provide access to:
//   - Profile: the signed-in user's basic profile and email
//   - Contacts: read and write, including contact groups and photos
//   - Tasks: full access
//   - Google+ login: people, activities and comments (legacy read-only feeds)
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",

	// Contacts scope
	"https://www.googleapis.com/auth/contacts",

	// Google Tasks scope
	"https://www.googleapis.com/auth/tasks",

	// Google+ scope
	"https://www.googleapis.com/auth/plus.login",
}
