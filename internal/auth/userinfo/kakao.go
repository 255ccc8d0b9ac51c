package userinfo

// Kakao response shape:
//
//	{
//	  "id": 123456789,
//	  "kakao_account": {
//	    "email": "user@example.com",
//	    "profile": { "nickname": "UserNickname" }
//	  }
//	}
//
// The id is a number at the top level; email and nickname only appear
// when the user consented to the matching scopes.

func kakaoID(attrs map[string]any) string {
	return asString(attrs["id"])
}

func kakaoEmail(attrs map[string]any) string {
	account := nested(attrs, "kakao_account")
	if account == nil {
		return ""
	}
	return asString(account["email"])
}

func kakaoName(attrs map[string]any) string {
	account := nested(attrs, "kakao_account")
	if account == nil {
		return ""
	}
	profile := nested(account, "profile")
	if profile == nil {
		return ""
	}
	return asString(profile["nickname"])
}
