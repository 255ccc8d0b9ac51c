package userinfo

// Google identities come from verified OIDC id_token claims, which are
// flat: "sub", "email", "name".

func googleID(attrs map[string]any) string {
	return asString(attrs["sub"])
}

func googleEmail(attrs map[string]any) string {
	return asString(attrs["email"])
}

func googleName(attrs map[string]any) string {
	return asString(attrs["name"])
}
