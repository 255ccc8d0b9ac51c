package userinfo

// Naver response shape:
//
//	{
//	  "resultcode": "00",
//	  "message": "success",
//	  "response": {
//	    "id": "naver-unique-id",
//	    "email": "user@example.com",
//	    "name": "UserNickname"
//	  }
//	}
//
// The whole identity sits under the "response" wrapper.

func naverID(attrs map[string]any) string {
	response := nested(attrs, "response")
	if response == nil {
		return ""
	}
	return asString(response["id"])
}

func naverEmail(attrs map[string]any) string {
	response := nested(attrs, "response")
	if response == nil {
		return ""
	}
	return asString(response["email"])
}

func naverName(attrs map[string]any) string {
	response := nested(attrs, "response")
	if response == nil {
		return ""
	}
	return asString(response["name"])
}
