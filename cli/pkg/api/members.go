package api

import (
	"github.com/certifiedcode/memberguard/cli/pkg/client"
	"github.com/certifiedcode/memberguard/cli/pkg/logger"
)

// Member is one row of the site member table
type Member struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	HasAvatar bool   `json:"hasAvatar"`
	AvatarURL string `json:"avatarUrl"`
}

type membersResponse struct {
	Members []Member `json:"members"`
}

// ListMembers fetches every member of the configured site
func ListMembers() ([]Member, error) {
	logger.Debug("Fetching members")

	var out membersResponse
	resp, err := client.Site().
		SetResult(&out).
		Get("/api/members")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Members, nil
}

// MissingAvatars keeps the members without a profile photo
func MissingAvatars(members []Member) []Member {
	var out []Member
	for _, m := range members {
		if !m.HasAvatar {
			out = append(out, m)
		}
	}
	return out
}
