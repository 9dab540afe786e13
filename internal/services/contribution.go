package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/repos"
	"github.com/ytfeed/ytfeed-backend/internal/types"
)

var (
	// ErrInvalidInput means the submission was missing its video URL or tags.
	ErrInvalidInput = errors.New("missing video_url or tags")
	// ErrQuotaExceeded means the user already hit the daily submission limit.
	ErrQuotaExceeded = errors.New("daily request limit reached")
	// ErrNotFound means a tag lookup matched nothing.
	ErrNotFound = errors.New("no matching data")
)

// Users may record at most this many contributions per UTC calendar day.
const dailySubmissionLimit = 3

// TaggedVideo is one raw aggregate row shaped for the tag lookup response.
type TaggedVideo struct {
	VideoID string   `json:"video_id"`
	Tags    []string `json:"tags"`
	Count   int      `json:"count"`
}

// ContributedVideo is one row of the per-user listing. Thumbnail and title
// are derived locally, not re-fetched from the catalog.
type ContributedVideo struct {
	VideoID      string    `json:"video_id"`
	Tags         string    `json:"tags"`
	Timestamp    time.Time `json:"timestamp"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Title        string    `json:"title"`
}

type ContributionService interface {
	StoreData(ctx context.Context, googleID, videoURL string, tags []string) error
	GetByTag(ctx context.Context, tag string) ([]TaggedVideo, error)
	GetCachedByTag(ctx context.Context, tag string) ([]*types.CachedVideoData, error)
	UserContributions(ctx context.Context, googleID string) ([]ContributedVideo, error)
}

type contributionService struct {
	db              *gorm.DB
	log             *logger.Logger
	userDataRepo    repos.UserDataRepo
	videoDataRepo   repos.VideoDataRepo
	cachedVideoRepo repos.CachedVideoRepo
}

func NewContributionService(db *gorm.DB, baseLog *logger.Logger, userDataRepo repos.UserDataRepo, videoDataRepo repos.VideoDataRepo, cachedVideoRepo repos.CachedVideoRepo) ContributionService {
	serviceLog := baseLog.With("service", "ContributionService")
	return &contributionService{
		db:              db,
		log:             serviceLog,
		userDataRepo:    userDataRepo,
		videoDataRepo:   videoDataRepo,
		cachedVideoRepo: cachedVideoRepo,
	}
}

// StoreData records one submission: quota check, aggregate bump, and a
// per-user row when the video is new to the aggregate table. A video already
// aggregated by an earlier submission (from any user) only gets its counter
// bumped; no new user_data row is written in that case.
func (cs *contributionService) StoreData(ctx context.Context, googleID, videoURL string, tags []string) error {
	if videoURL == "" || len(tags) == 0 {
		return ErrInvalidInput
	}
	videoID, err := videoIDFromURL(videoURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	dayStart := now.Truncate(24 * time.Hour)
	submitted, err := cs.userDataRepo.CountByUserInWindow(ctx, nil, googleID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to count daily submissions: %w", err)
	}
	if submitted >= dailySubmissionLimit {
		return ErrQuotaExceeded
	}

	joinedTags := strings.Join(tags, ",")
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := cs.videoDataRepo.GetByVideoID(ctx, tx, videoID)
		if err != nil {
			return fmt.Errorf("failed to look up video aggregate: %w", err)
		}
		if existing != nil {
			return cs.videoDataRepo.IncrementCount(ctx, tx, videoID)
		}

		video := &types.VideoData{
			VideoID:   videoID,
			Tags:      joinedTags,
			Timestamp: now,
			Count:     1,
		}
		if err := cs.videoDataRepo.Create(ctx, tx, video); err != nil {
			return fmt.Errorf("failed to create video aggregate: %w", err)
		}

		alreadyContributed, err := cs.userDataRepo.Exists(ctx, tx, googleID, videoID)
		if err != nil {
			return fmt.Errorf("failed to check existing contribution: %w", err)
		}
		if alreadyContributed {
			return nil
		}
		record := &types.UserData{
			GoogleID:  googleID,
			VideoID:   videoID,
			Tags:      joinedTags,
			Timestamp: now,
		}
		if err := cs.userDataRepo.Create(ctx, tx, record); err != nil {
			return fmt.Errorf("failed to create contribution: %w", err)
		}
		return nil
	})
}

// GetByTag matches the tag as a substring of each aggregate's tag string, so
// "music" also matches videos tagged "musically".
func (cs *contributionService) GetByTag(ctx context.Context, tag string) ([]TaggedVideo, error) {
	videos, err := cs.videoDataRepo.GetByTagLike(ctx, nil, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data by tag: %w", err)
	}
	if len(videos) == 0 {
		return nil, ErrNotFound
	}
	results := make([]TaggedVideo, 0, len(videos))
	for _, v := range videos {
		results = append(results, TaggedVideo{
			VideoID: v.VideoID,
			Tags:    strings.Split(v.Tags, ","),
			Count:   v.Count,
		})
	}
	return results, nil
}

// GetCachedByTag is an exact match against the cache's tag_category column.
func (cs *contributionService) GetCachedByTag(ctx context.Context, tag string) ([]*types.CachedVideoData, error) {
	cached, err := cs.cachedVideoRepo.GetByTagCategory(ctx, nil, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cached videos: %w", err)
	}
	if len(cached) == 0 {
		return nil, ErrNotFound
	}
	return cached, nil
}

func (cs *contributionService) UserContributions(ctx context.Context, googleID string) ([]ContributedVideo, error) {
	records, err := cs.userDataRepo.GetByUser(ctx, nil, googleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user contributions: %w", err)
	}
	results := make([]ContributedVideo, 0, len(records))
	for _, r := range records {
		results = append(results, ContributedVideo{
			VideoID:      r.VideoID,
			Tags:         r.Tags,
			Timestamp:    r.Timestamp,
			ThumbnailURL: fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", r.VideoID),
			Title:        fmt.Sprintf("Video %s", r.VideoID),
		})
	}
	return results, nil
}

// videoIDFromURL extracts the id from a watch URL, dropping any trailing
// query parameters. Only the watch?v= shape is accepted.
func videoIDFromURL(raw string) (string, error) {
	_, after, found := strings.Cut(raw, "watch?v=")
	if !found {
		return "", fmt.Errorf("unrecognized video url %q", raw)
	}
	id, _, _ := strings.Cut(after, "&")
	if id == "" {
		return "", fmt.Errorf("empty video id in url %q", raw)
	}
	return id, nil
}
