package wix

import (
	"context"

	"github.com/go-resty/resty/v2"
)

type appInstanceResponse struct {
	Instance struct {
		InstanceID string `json:"instanceId"`
		AppName    string `json:"appName"`
	} `json:"instance"`
	Site struct {
		SiteDisplayName string `json:"siteDisplayName"`
		OwnerEmail      string `json:"ownerEmail"`
	} `json:"site"`
}

// GetAppInstance returns install details, including the site owner's email
func (ic *instanceClient) GetAppInstance(ctx context.Context) (inst *AppInstance, err error) {
	ctx, end := ic.trace(ctx, "get_app_instance", "")
	var resp *resty.Response
	defer func() { end(resp, err) }()

	req, err := ic.request(ctx)
	if err != nil {
		return nil, err
	}
	var out appInstanceResponse
	resp, err = req.SetResult(&out).Get("/apps/v1/instance")
	if err = checkResponse("get app instance", resp, err); err != nil {
		return nil, err
	}

	id := out.Instance.InstanceID
	if id == "" {
		id = ic.instanceID
	}
	return &AppInstance{
		InstanceID: id,
		AppName:    out.Instance.AppName,
		SiteName:   out.Site.SiteDisplayName,
		OwnerEmail: out.Site.OwnerEmail,
	}, nil
}
