package api

import (
	"strconv"
	"time"

	"github.com/certifiedcode/memberguard/cli/pkg/client"
	"github.com/certifiedcode/memberguard/cli/pkg/logger"
)

// Activity is one entry of the site activity log
type Activity struct {
	ID        uint      `json:"id"`
	Kind      string    `json:"kind"`
	MemberID  string    `json:"member_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type activityResponse struct {
	Activity []Activity `json:"activity"`
}

// RecentActivity returns the newest activity entries, newest first
func RecentActivity(limit int) ([]Activity, error) {
	logger.Debug("Fetching activity", "limit", limit)

	req := client.Site()
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	var out activityResponse
	resp, err := req.SetResult(&out).Get("/api/activity")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Activity, nil
}
