package wix

import (
	"context"
	"strconv"
	"time"

	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// MembersPageSize is the page size used when listing every member
	MembersPageSize = 1000
	// maxMembersOffset stops pagination on runaway result sets
	maxMembersOffset = 100000
)

type instanceClient struct {
	app        *Client
	instanceID string
	tokens     oauth2.TokenSource
}

// request builds an authorized request. Wix expects the bare token in Authorization.
func (ic *instanceClient) request(ctx context.Context) (*resty.Request, error) {
	tok, err := ic.tokens.Token()
	if err != nil {
		return nil, err
	}
	return ic.app.http.R().
		SetContext(ctx).
		SetHeader("Authorization", tok.AccessToken).
		SetError(&errorBody{}), nil
}

func (ic *instanceClient) trace(ctx context.Context, op, resourceID string) (context.Context, func(*resty.Response, error)) {
	ctx, span := telemetry.TraceExternalCall(ctx, telemetry.ExternalServiceCallAttrs{
		Service:    "wix",
		Operation:  op,
		InstanceID: ic.instanceID,
		ResourceID: resourceID,
	})
	return ctx, func(resp *resty.Response, err error) {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		telemetry.EndExternalCall(span, status, err)
	}
}

type memberEnvelope struct {
	Member Member `json:"member"`
}

type listMembersResponse struct {
	Members  []Member `json:"members"`
	Metadata struct {
		Count  int `json:"count"`
		Offset int `json:"offset"`
		Total  int `json:"total"`
	} `json:"metadata"`
}

// GetMember fetches one member with the FULL fieldset
func (ic *instanceClient) GetMember(ctx context.Context, memberID string) (m *Member, err error) {
	ctx, end := ic.trace(ctx, "get_member", memberID)
	var resp *resty.Response
	defer func() { end(resp, err) }()

	req, err := ic.request(ctx)
	if err != nil {
		return nil, err
	}
	var out memberEnvelope
	resp, err = req.
		SetPathParam("id", memberID).
		SetQueryParam("fieldsets", "FULL").
		SetResult(&out).
		Get("/members/v1/members/{id}")
	if err = checkResponse("get member", resp, err); err != nil {
		return nil, err
	}
	return &out.Member, nil
}

// ListMembers returns one page of members
func (ic *instanceClient) ListMembers(ctx context.Context, limit, offset int) (members []Member, err error) {
	ctx, end := ic.trace(ctx, "list_members", "")
	var resp *resty.Response
	defer func() { end(resp, err) }()

	req, err := ic.request(ctx)
	if err != nil {
		return nil, err
	}
	var out listMembersResponse
	resp, err = req.
		SetQueryParams(map[string]string{
			"paging.limit":  strconv.Itoa(limit),
			"paging.offset": strconv.Itoa(offset),
			"fieldsets":     "FULL",
		}).
		SetResult(&out).
		Get("/members/v1/members")
	if err = checkResponse("list members", resp, err); err != nil {
		return nil, err
	}
	return out.Members, nil
}

// ListAllMembers pages through every member until a short page
func (ic *instanceClient) ListAllMembers(ctx context.Context) ([]Member, error) {
	return CollectMembers(ctx, ic, MembersPageSize)
}

// MemberPager is the listing half of InstanceAPI
type MemberPager interface {
	ListMembers(ctx context.Context, limit, offset int) ([]Member, error)
}

// CollectMembers walks pages of pageSize until a page comes back short
// or the offset passes the safety limit.
func CollectMembers(ctx context.Context, pager MemberPager, pageSize int) ([]Member, error) {
	start := time.Now()
	var all []Member
	offset := 0
	for {
		page, err := pager.ListMembers(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
		offset += pageSize
		if offset > maxMembersOffset {
			logger.Log.Warn("Reached safety limit for member pagination, stopping",
				zap.Int("offset", offset),
				zap.Int("fetched", len(all)),
			)
			break
		}
	}
	logger.Log.Debug("Fetched members",
		zap.Int("count", len(all)),
		logger.WithDuration(time.Since(start)),
	)
	return all, nil
}

// UpdateMemberPhoto replaces the member's profile photo
func (ic *instanceClient) UpdateMemberPhoto(ctx context.Context, memberID string, photo Photo) (m *Member, err error) {
	ctx, end := ic.trace(ctx, "update_member", memberID)
	var resp *resty.Response
	defer func() { end(resp, err) }()

	req, err := ic.request(ctx)
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"member": map[string]any{
			"profile": map[string]any{"photo": photo},
		},
	}
	var out memberEnvelope
	resp, err = req.
		SetPathParam("id", memberID).
		SetBody(body).
		SetResult(&out).
		Patch("/members/v1/members/{id}")
	if err = checkResponse("update member", resp, err); err != nil {
		return nil, err
	}
	return &out.Member, nil
}

// BlockMember blocks the member from logging in to the site
func (ic *instanceClient) BlockMember(ctx context.Context, memberID string) (err error) {
	ctx, end := ic.trace(ctx, "block_member", memberID)
	var resp *resty.Response
	defer func() { end(resp, err) }()

	req, err := ic.request(ctx)
	if err != nil {
		return err
	}
	resp, err = req.
		SetPathParam("id", memberID).
		SetBody(map[string]any{}).
		Post("/members/v1/members/{id}/block")
	return checkResponse("block member", resp, err)
}
