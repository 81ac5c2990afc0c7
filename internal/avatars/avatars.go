// Package avatars applies Gravatar images to many members at once.
package avatars

import (
	"context"
	"errors"

	"github.com/certifiedcode/memberguard/internal/gravatar"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/metrics"
	"github.com/certifiedcode/memberguard/internal/models"
	"github.com/certifiedcode/memberguard/internal/telemetry"
	"github.com/certifiedcode/memberguard/internal/wix"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Concurrency is the number of members processed at once
const Concurrency = 4

// PhotoSize is the edge length recorded for imported avatars
const PhotoSize = 200

var (
	ErrNoEmail       = errors.New("No email found for member")
	ErrAlreadyHasPic = errors.New("Member already has a profile photo")
)

// Failure explains why one member was not updated
type Failure struct {
	MemberID string `json:"memberId"`
	Error    string `json:"error"`
}

// Results lists updated member ids and failures in input order
type Results struct {
	Success []string  `json:"success"`
	Failed  []Failure `json:"failed"`
}

// ActivityLog records applied avatars
type ActivityLog interface {
	Record(ctx context.Context, activity *models.Activity) error
}

// Updater runs bulk avatar updates for one site
type Updater struct {
	api        wix.InstanceAPI
	instanceID string
	activity   ActivityLog
}

// NewUpdater creates an updater. activity may be nil.
func NewUpdater(api wix.InstanceAPI, instanceID string, activity ActivityLog) *Updater {
	return &Updater{api: api, instanceID: instanceID, activity: activity}
}

// BulkUpdate imports each member's Gravatar into Wix Media and sets it as their
// profile photo. Duplicate ids are processed once; a failure never stops the batch.
func (u *Updater) BulkUpdate(ctx context.Context, memberIDs []string) Results {
	ids := dedupe(memberIDs)

	ctx, span := telemetry.GetBusinessEvents().TraceBulkAvatars(ctx, len(ids))
	defer span.End()

	errs := make([]error, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = u.updateOne(gctx, id)
			// per-member failures are collected, never returned
			return nil
		})
	}
	_ = g.Wait()

	res := Results{Success: []string{}, Failed: []Failure{}}
	for i, id := range ids {
		if errs[i] != nil {
			res.Failed = append(res.Failed, Failure{MemberID: id, Error: errs[i].Error()})
			continue
		}
		res.Success = append(res.Success, id)
	}

	logger.Log.Info("Bulk avatar update finished",
		logger.WithInstanceID(u.instanceID),
		zap.Int("success", len(res.Success)),
		zap.Int("failed", len(res.Failed)),
	)
	return res
}

func (u *Updater) updateOne(ctx context.Context, memberID string) error {
	member, err := u.api.GetMember(ctx, memberID)
	if err != nil {
		logger.Log.Warn("Error loading member", logger.WithMemberID(memberID), zap.Error(err))
		return err
	}

	email := member.Email()
	if email == "" {
		return ErrNoEmail
	}
	if member.HasPhoto() {
		return ErrAlreadyHasPic
	}

	file, err := u.api.ImportImage(ctx, gravatar.URL(email, gravatar.DefaultOptions))
	if err != nil {
		logger.Log.Warn("Error importing Gravatar", logger.WithMemberID(memberID), zap.Error(err))
		return err
	}

	zero := 0
	photo := wix.Photo{
		ID:      file.ID,
		URL:     file.URL,
		Height:  PhotoSize,
		Width:   PhotoSize,
		OffsetX: &zero,
		OffsetY: &zero,
	}
	if _, err := u.api.UpdateMemberPhoto(ctx, memberID, photo); err != nil {
		logger.Log.Warn("Error updating member photo", logger.WithMemberID(memberID), zap.Error(err))
		return err
	}

	metrics.RecordAvatarSet("bulk")
	if u.activity != nil {
		if err := u.activity.Record(ctx, &models.Activity{
			InstanceID: u.instanceID,
			Kind:       models.ActivityAvatarSet,
			MemberID:   memberID,
			Detail:     file.URL,
		}); err != nil {
			logger.Log.Warn("Failed to record activity", logger.WithMemberID(memberID), zap.Error(err))
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

