package api

import (
	"github.com/certifiedcode/memberguard/cli/pkg/client"
	"github.com/certifiedcode/memberguard/cli/pkg/logger"
)

// AvatarFailure explains why one member was not updated
type AvatarFailure struct {
	MemberID string `json:"memberId"`
	Error    string `json:"error"`
}

// AvatarResults is the outcome of a bulk avatar run
type AvatarResults struct {
	Success []string        `json:"success"`
	Failed  []AvatarFailure `json:"failed"`
}

// ApplyAvatars asks the server to set Gravatar photos for memberIDs
func ApplyAvatars(memberIDs []string) (*AvatarResults, error) {
	logger.Debug("Applying avatars", "count", len(memberIDs))

	var out AvatarResults
	resp, err := client.Site().
		SetBody(map[string][]string{"memberIds": memberIDs}).
		SetResult(&out).
		Post("/api/bulk-update-avatars")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}
